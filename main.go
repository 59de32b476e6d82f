package main

import (
	"crypto/tls"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"alignzo-api/api"
	"alignzo-api/selection"
	"alignzo-api/upstream"
)

func main() {
	if dbg, err := strconv.ParseBool(os.Getenv("DEBUG")); err == nil && dbg {
		log.SetLevel(log.DebugLevel)
	}

	baseURL := os.Getenv("UPSTREAM_BASE_URL")
	if baseURL == "" {
		log.Fatal("missing upstream config")
	}
	serviceToken := os.Getenv("UPSTREAM_SERVICE_TOKEN")
	upstreamTimeout := 30 * time.Second
	if v := os.Getenv("UPSTREAM_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			log.Fatalf("invalid UPSTREAM_TIMEOUT: %v", err)
		}
		upstreamTimeout = d
	}
	client := upstream.New(baseURL, serviceToken, upstreamTimeout)

	redisConn := os.Getenv("REDIS_CONNECTION_STRING")
	if redisConn == "" {
		log.Fatal("missing redis config")
	}
	redisOpts, err := redis.ParseURL(redisConn)
	if err != nil {
		parts := strings.Split(redisConn, ",")
		redisOpts = &redis.Options{Addr: parts[0]}
		for _, p := range parts[1:] {
			kv := strings.SplitN(p, "=", 2)
			if len(kv) != 2 {
				continue
			}
			switch strings.ToLower(kv[0]) {
			case "password":
				redisOpts.Password = kv[1]
			case "ssl":
				if strings.ToLower(kv[1]) == "true" {
					redisOpts.TLSConfig = &tls.Config{}
				}
			}
		}
	}
	rc := redis.NewClient(redisOpts)

	catalogTTL := 5 * time.Minute
	if v := os.Getenv("CATALOG_CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			log.Fatalf("invalid CATALOG_CACHE_TTL: %v", err)
		}
		catalogTTL = d
	}
	cached := upstream.NewCache(client, rc, catalogTTL)

	dedupeTTL := 24 * time.Hour
	if v := os.Getenv("DEDUPER_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			log.Fatalf("invalid DEDUPER_TTL: %v", err)
		}
		dedupeTTL = d
	}
	deduper := api.NewRedisDeduper(rc, dedupeTTL)

	testMode := os.Getenv("AUTH0_TEST_MODE") == "1"
	var auth *api.Auth
	if testMode {
		auth = api.NewAuth(nil, "", "")
	} else {
		jwtAudience := os.Getenv("AUTH0_AUDIENCE")
		domain := os.Getenv("AUTH0_DOMAIN")
		if jwtAudience == "" || domain == "" {
			log.Fatal("missing Auth0 config")
		}
		jwksURL := fmt.Sprintf("https://%s/.well-known/jwks.json", domain)
		jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{})
		if err != nil {
			log.Fatalf("jwks: %v", err)
		}
		auth = api.NewAuth(jwks, jwtAudience, "https://"+domain+"/")
	}

	requireAll := envFlag("CATEGORY_REQUIRE_ALL", true)
	allowPastDueOnEdit := envFlag("ALLOW_PAST_DUE_ON_EDIT", true)
	policies := api.Policies{
		Create: selection.Policy{RequireAll: requireAll},
		Edit:   selection.Policy{RequireAll: requireAll, AllowPastDue: allowPastDueOnEdit},
	}

	e := echo.New()
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "Idempotency-Key"},
	}))
	e.Use(api.GzipRequestMiddleware(0))
	e.Use(echoprometheus.NewMiddleware("alignzo"))
	e.GET("/metrics", echoprometheus.NewHandler())

	logger := log.New()
	api.Register(e, cached, auth, deduper, policies, logger)

	listenAddr := ":8080"
	if val, ok := os.LookupEnv("FUNCTIONS_CUSTOMHANDLER_PORT"); ok {
		listenAddr = ":" + val
	}

	e.Logger.Fatal(e.Start(listenAddr))
}

func envFlag(name string, def bool) bool {
	v := os.Getenv(name)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Fatalf("invalid %s: %v", name, err)
	}
	return b
}
