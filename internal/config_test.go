package internal_test

import (
	"os"
	"time"

	"github.com/frahmantamala/donation-management/internal"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func setEnv(key, value string) {
	previous, had := os.LookupEnv(key)
	Expect(os.Setenv(key, value)).To(Succeed())
	DeferCleanup(func() {
		if had {
			_ = os.Setenv(key, previous)
		} else {
			_ = os.Unsetenv(key)
		}
	})
}

var _ = Describe("Config", func() {
	Describe("LoadConfigFromEnv", func() {
		It("reads payment and fee settings", func() {
			setEnv("DB_SOURCE", "postgres://localhost/donations")
			setEnv("MIDTRANS_SERVER_KEY", "SB-Mid-server-key")
			setEnv("DONATION_MINIMUM", "20000")
			setEnv("DONATION_FEES", "BCA_VA=4000, shopeepay=2%, broken")
			setEnv("RECONCILE_STALE_AFTER", "45m")

			cfg := internal.LoadConfigFromEnv()
			Expect(cfg.Payment.ServerKey).To(Equal("SB-Mid-server-key"))
			Expect(cfg.Payment.MinimumDonation).To(Equal(int64(20000)))
			Expect(cfg.Payment.Fees).To(Equal(map[string]string{"bca_va": "4000", "shopeepay": "2%"}))
			Expect(cfg.Reconciliation.StaleAfter).To(Equal(45 * time.Minute))
			Expect(cfg.Validate()).To(Succeed())
		})

		It("falls back to the default fee table", func() {
			setEnv("DONATION_FEES", "")

			cfg := internal.LoadConfigFromEnv()
			Expect(cfg.Payment.Fees).To(Equal(internal.DefaultFees()))
		})
	})

	Describe("Validate", func() {
		var cfg *internal.Config

		BeforeEach(func() {
			cfg = &internal.Config{
				Server: internal.ServerConfig{AllowedOrigins: "https://donasi.example, *"},
				Database: internal.DatabaseConfig{
					Source:       "postgres://localhost/donations",
					MaxOpenConns: 10,
					MaxIdleConns: 5,
				},
				Payment: internal.PaymentConfig{
					ServerKey: "key",
					Fees:      internal.DefaultFees(),
				},
			}
		})

		It("accepts a complete configuration", func() {
			Expect(cfg.Validate()).To(Succeed())
			Expect(cfg.Server.Origins()).To(Equal([]string{"https://donasi.example", "*"}))
		})

		It("requires the Midtrans server key", func() {
			cfg.Payment.ServerKey = ""
			Expect(cfg.Validate()).To(MatchError(ContainSubstring("server_key is required")))
		})

		It("requires at least one fee", func() {
			cfg.Payment.Fees = nil
			Expect(cfg.Validate()).To(MatchError(ContainSubstring("payment method fee")))
		})

		It("requires brokers when kafka is enabled", func() {
			cfg.Events.KafkaEnabled = true
			cfg.Events.Topic = "donation-events"
			Expect(cfg.Validate()).To(MatchError(ContainSubstring("brokers is required")))
		})

		It("requires addresses when the cache is enabled", func() {
			cfg.Cache.Enabled = true
			Expect(cfg.Validate()).To(MatchError(ContainSubstring("addrs is required")))
		})

		It("rejects more idle than open connections", func() {
			cfg.Database.MaxIdleConns = 20
			Expect(cfg.Validate()).To(MatchError(ContainSubstring("max_idle_conns")))
		})
	})
})
