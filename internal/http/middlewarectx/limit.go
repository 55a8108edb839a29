package middlewarectx

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/asset-marketplace/internal/http/response"
)

// IPRateLimiter держит token bucket на каждый IP. Число отслеживаемых
// адресов ограничено, давно не встречавшиеся вытесняются.
type IPRateLimiter struct {
	mu      sync.Mutex
	clients *lru.Cache[string, *rate.Limiter]
	rps     rate.Limit
	burst   int
}

// NewIPRateLimiter создаёт лимитер на rps запросов в секунду с запасом burst.
func NewIPRateLimiter(rps float64, burst, maxClients int) (*IPRateLimiter, error) {
	clients, err := lru.New[string, *rate.Limiter](maxClients)
	if err != nil {
		return nil, fmt.Errorf("middlewarectx.NewIPRateLimiter: %w", err)
	}
	return &IPRateLimiter{clients: clients, rps: rate.Limit(rps), burst: burst}, nil
}

// Allow сообщает, можно ли пропустить ещё один запрос с адреса ip.
func (l *IPRateLimiter) Allow(ip string) bool {
	l.mu.Lock()
	lim, ok := l.clients.Get(ip)
	if !ok {
		lim = rate.NewLimiter(l.rps, l.burst)
		l.clients.Add(ip, lim)
	}
	l.mu.Unlock()
	return lim.Allow()
}

// RateLimitMiddleware отвечает 429, когда адрес исчерпал лимит.
func RateLimitMiddleware(l *IPRateLimiter, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			if !l.Allow(ip) {
				log.Warn("too many requests", slog.String("ip", ip), slog.String("path", r.URL.Path))
				w.Header().Set("Retry-After", "1")
				response.Fail(w, r, http.StatusTooManyRequests, "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP берёт адрес из RemoteAddr. Заголовки клиента не читаются: за доверенным
// прокси RemoteAddr заранее переписывает middleware.RealIP.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
