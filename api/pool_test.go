package api

import (
	"errors"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"

	"alignzo-api/domain"
)

func testLinks() []domain.CategoryLink {
	opt := "o1"
	return []domain.CategoryLink{{CategoryID: "c1", CategoryOptionID: &opt}}
}

func TestLinkSenderDeliversJob(t *testing.T) {
	resetLinkSenderForTests()
	t.Cleanup(resetLinkSenderForTests)

	up := &mockUpstream{}
	initLinkSender(up, nil, log.New())

	job := linkJob{taskID: "task-1", userID: "u1", userEmail: "u@example.com", links: testLinks()}
	if !tryEnqueueJob(job) {
		t.Fatal("enqueue failed with empty buffer")
	}

	saved := waitForSavedLinks(t, up, 1)
	if saved[0].taskID != "task-1" || saved[0].userEmail != "u@example.com" {
		t.Fatalf("unexpected delivery: %#v", saved[0])
	}
}

func TestLinkSenderRollsBackKeysOnFailure(t *testing.T) {
	resetLinkSenderForTests()
	t.Cleanup(resetLinkSenderForTests)

	up := &mockUpstream{saveErr: errors.New("upstream down")}
	deduper := &mockDeduper{}
	initLinkSender(up, deduper, log.New())

	job := linkJob{taskID: "task-1", userID: "u1", links: testLinks(), added: []string{"key-1"}}
	if !tryEnqueueJob(job) {
		t.Fatal("enqueue failed with empty buffer")
	}

	deadline := time.Now().Add(200 * time.Millisecond)
	for {
		deduper.mu.Lock()
		removed := len(deduper.removed)
		deduper.mu.Unlock()
		if removed == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("timeout waiting for key rollback")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestTryEnqueueJobWithoutSender(t *testing.T) {
	resetLinkSenderForTests()

	if tryEnqueueJob(linkJob{taskID: "task-1"}) {
		t.Fatal("enqueue must fail when the sender is not running")
	}
}

func TestInitLinkSenderRunsOnce(t *testing.T) {
	resetLinkSenderForTests()
	t.Cleanup(resetLinkSenderForTests)

	first := &mockUpstream{}
	second := &mockUpstream{}
	initLinkSender(first, nil, log.New())
	initLinkSender(second, nil, log.New())

	if globalUpstream != Upstream(first) {
		t.Fatal("second init must not replace the upstream")
	}
}

func TestInitLinkSenderConfigFromEnv(t *testing.T) {
	resetLinkSenderForTests()
	t.Cleanup(resetLinkSenderForTests)

	t.Setenv("LINK_WORKERS", "2")
	t.Setenv("LINK_BUFFER", "4")
	t.Setenv("LINK_SEND_TIMEOUT", "5s")
	t.Setenv("LINK_HANDOFF_TIMEOUT", "1ms")

	initLinkSender(&mockUpstream{}, nil, log.New())

	if workerCount != 2 || jobBuf != 4 {
		t.Fatalf("unexpected pool sizing: workers=%d buffer=%d", workerCount, jobBuf)
	}
	if sendTimeout != 5*time.Second || handoffTimeout != time.Millisecond {
		t.Fatalf("unexpected timeouts: send=%v handoff=%v", sendTimeout, handoffTimeout)
	}
}
