// Package secgate is the security gateway for the marketplace
// storefront: rate limiting, fraud scoring, payload encryption, input
// sanitization, and compliance workflows, with HTTP middleware for
// Chi and standard http.Handler.
//
// The root package holds the middleware glue. The decision-making
// cores live in subpackages and can be used without HTTP:
//
//   - limiter: sliding-window rate limiting over a pluggable store
//   - fraud: additive risk scoring over per-actor event histories
//   - vault: AES-256-GCM encryption of opaque payloads
//   - sanitize: escaping/stripping of untrusted strings
//   - compliance: data export and erasure workflows
//
// Typical wiring:
//
//	cfg, err := secgate.LoadConfig()
//	if err != nil {
//		log.Fatal(err)
//	}
//	key, err := vault.KeyFromBase64(cfg.EncryptionKey)
//	if err != nil {
//		log.Fatal(err)
//	}
//	v, err := vault.New(key, nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	st := store.NewMemory()
//	defer st.Close()
//	detector := fraud.New(fraud.NewMemoryHistory(), fraud.NewBlocklist())
//
//	r := chi.NewRouter()
//	r.Use(secgate.WithSecurityHeaders)
//	r.Use(secgate.RateLimit(st, 100, time.Minute))
//	r.With(secgate.FraudGuard(detector, fraud.EventLoginAttempt)).
//		Post("/login", loginHandler)
package secgate
