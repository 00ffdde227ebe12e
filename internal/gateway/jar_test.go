package gateway_test

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/hr-portal/internal/gateway"
	"github.com/frahmantamala/hr-portal/pkg/logger"
)

type memoryCookieStore struct {
	mu      sync.Mutex
	cookies []*http.Cookie
	writes  int
}

func (m *memoryCookieStore) LoadCookies(_ context.Context) ([]*http.Cookie, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*http.Cookie(nil), m.cookies...), nil
}

func (m *memoryCookieStore) ReplaceCookies(_ context.Context, cookies []*http.Cookie) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cookies = append([]*http.Cookie(nil), cookies...)
	m.writes++
	return nil
}

var _ = Describe("PersistentJar", func() {
	var (
		ctx   context.Context
		store *memoryCookieStore
		base  *url.URL
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = &memoryCookieStore{}
		base, _ = url.Parse("http://127.0.0.1:8081")
	})

	It("should survive a reload", func() {
		jar, err := gateway.NewPersistentJar(ctx, base.String(), store, logger.Discard())
		Expect(err).NotTo(HaveOccurred())
		jar.SetCookies(base, []*http.Cookie{{Name: "refreshToken", Value: "r-1", Path: "/", MaxAge: 3600, HttpOnly: true}})

		reloaded, err := gateway.NewPersistentJar(ctx, base.String(), store, logger.Discard())
		Expect(err).NotTo(HaveOccurred())

		cookies := reloaded.Cookies(base)
		Expect(cookies).To(HaveLen(1))
		Expect(cookies[0].Value).To(Equal("r-1"))
	})

	It("should forget a cookie the server expires", func() {
		jar, err := gateway.NewPersistentJar(ctx, base.String(), store, logger.Discard())
		Expect(err).NotTo(HaveOccurred())
		jar.SetCookies(base, []*http.Cookie{{Name: "refreshToken", Value: "r-1", Path: "/"}})
		jar.SetCookies(base, []*http.Cookie{{Name: "refreshToken", Value: "", Path: "/", MaxAge: -1}})

		Expect(jar.Cookies(base)).To(BeEmpty())
		saved, _ := store.LoadCookies(ctx)
		Expect(saved).To(BeEmpty())
	})

	It("should skip stored cookies that already expired", func() {
		Expect(store.ReplaceCookies(ctx, []*http.Cookie{
			{Name: "stale", Value: "x", Path: "/", Expires: time.Now().Add(-time.Minute)},
			{Name: "fresh", Value: "y", Path: "/", Expires: time.Now().Add(time.Hour)},
		})).To(Succeed())

		jar, err := gateway.NewPersistentJar(ctx, base.String(), store, logger.Discard())
		Expect(err).NotTo(HaveOccurred())

		cookies := jar.Cookies(base)
		Expect(cookies).To(HaveLen(1))
		Expect(cookies[0].Name).To(Equal("fresh"))
	})

	It("should not persist cookies from other hosts", func() {
		jar, err := gateway.NewPersistentJar(ctx, base.String(), store, logger.Discard())
		Expect(err).NotTo(HaveOccurred())

		other, _ := url.Parse("http://example.com")
		jar.SetCookies(other, []*http.Cookie{{Name: "tracker", Value: "1"}})
		Expect(store.writes).To(BeZero())
	})
})
