package config_test

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/echoguardhq/echoguard/pkg/config"
)

func TestConfig(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Config Suite")
}

var _ = Describe("Config", func() {
	var tmpDir string

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "config-test-*")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	Describe("NewDefaultConfig", func() {
		It("fills every section with sane defaults", func() {
			cfg := config.NewDefaultConfig()

			Expect(cfg.API.Listen).To(Equal(":8081"))
			Expect(cfg.VectorStore.Provider).To(Equal("sqlite"))
			Expect(cfg.VectorStore.Collection).To(Equal("crisis_incidents"))
			Expect(cfg.Embedding.Provider).To(Equal("clip"))
			Expect(cfg.Embedding.Dimensions).To(Equal(uint(512)))
			Expect(cfg.Matching.TopK).To(Equal(uint(3)))
			Expect(cfg.Matching.ImageWeight).To(Equal(0.6))
			Expect(cfg.Matching.WindowHours).To(Equal(24.0))
			Expect(cfg.Matching.SpanMultiplier).To(Equal(3.0))
			Expect(cfg.Matching.DecayFloor).To(Equal(0.3))
			Expect(cfg.Events.Enabled).To(BeFalse())
		})
	})

	Describe("ParseConfigTOML", func() {
		It("parses sectioned TOML", func() {
			data := []byte(`
[api]
listen = ":9090"

[matching]
top_k = 5
min_score = 0.4
`)
			cfg, err := config.ParseConfigTOML(data)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.API.Listen).To(Equal(":9090"))
			Expect(cfg.Matching.TopK).To(Equal(uint(5)))
			Expect(cfg.Matching.MinScore).To(Equal(0.4))
		})

		It("rejects unsupported versions", func() {
			_, err := config.ParseConfigTOML([]byte("version = 99"))
			Expect(err).To(HaveOccurred())
		})

		It("rejects malformed TOML", func() {
			_, err := config.ParseConfigTOML([]byte("[[[nope"))
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Configer", func() {
		It("returns defaults when no config file exists", func() {
			cfger, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			cfg, err := cfger.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Matching.TopK).To(Equal(uint(3)))
		})

		It("round-trips save and load", func() {
			cfger, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			cfg := config.NewDefaultConfig()
			cfg.VectorStore.Provider = "qdrant"
			cfg.VectorStore.Target = "localhost:6334"

			Expect(cfger.SaveConfig(cfg)).To(Succeed())

			loaded, err := cfger.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.VectorStore.Provider).To(Equal("qdrant"))
			Expect(loaded.VectorStore.Target).To(Equal("localhost:6334"))
		})

		It("fills zero-value fields from defaults on load", func() {
			path := filepath.Join(tmpDir, "config.toml")
			Expect(os.WriteFile(path, []byte("[api]\nlisten = \":7000\"\n"), 0o600)).To(Succeed())

			cfger, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			cfg, err := cfger.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.API.Listen).To(Equal(":7000"))
			Expect(cfg.Embedding.Model).To(Equal("ViT-B-32"))
			Expect(cfg.Matching.DecayFloor).To(Equal(0.3))
		})

		Describe("SetConfigValue / GetConfigValue", func() {
			var cfger *config.Configer

			BeforeEach(func() {
				var err error
				cfger, err = config.NewConfiger(tmpDir)
				Expect(err).NotTo(HaveOccurred())
			})

			It("sets and gets string keys", func() {
				Expect(cfger.SetConfigValue("embedding.provider", "ollama")).To(Succeed())

				val, err := cfger.GetConfigValue("embedding.provider")
				Expect(err).NotTo(HaveOccurred())
				Expect(val).To(Equal("ollama"))
			})

			It("sets and gets numeric keys", func() {
				Expect(cfger.SetConfigValue("matching.top_k", "7")).To(Succeed())

				val, err := cfger.GetConfigValue("matching.top_k")
				Expect(err).NotTo(HaveOccurred())
				Expect(val).To(Equal("7"))
			})

			It("sets and gets broker lists", func() {
				Expect(cfger.SetConfigValue("events.brokers", "k1:9092, k2:9092")).To(Succeed())

				val, err := cfger.GetConfigValue("events.brokers")
				Expect(err).NotTo(HaveOccurred())
				Expect(val).To(Equal("k1:9092,k2:9092"))
			})

			It("rejects out-of-range image weights", func() {
				Expect(cfger.SetConfigValue("matching.image_weight", "1.5")).To(HaveOccurred())
			})

			It("rejects unknown keys", func() {
				Expect(cfger.SetConfigValue("nope.nothing", "x")).To(HaveOccurred())

				_, err := cfger.GetConfigValue("nope.nothing")
				Expect(err).To(HaveOccurred())
			})

			It("rejects non-numeric values for numeric keys", func() {
				Expect(cfger.SetConfigValue("matching.top_k", "many")).To(HaveOccurred())
			})
		})
	})

	Describe("ValidConfigKeys", func() {
		It("includes every supported key", func() {
			keys := config.ValidConfigKeys()
			Expect(keys).To(ContainElements(
				"api.listen",
				"vector_store.provider",
				"embedding.dimensions",
				"matching.top_k",
				"matching.image_weight",
				"events.brokers",
			))
		})

		It("validates keys", func() {
			Expect(config.IsValidConfigKey("matching.min_score")).To(BeTrue())
			Expect(config.IsValidConfigKey("bogus")).To(BeFalse())
		})
	})

	Describe("InitViper", func() {
		It("registers defaults", func() {
			v, err := config.InitViper(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(v.GetString("api.listen")).To(Equal(":8081"))
			Expect(v.GetUint("matching.top_k")).To(Equal(uint(3)))
		})

		It("reads values from config.toml", func() {
			path := filepath.Join(tmpDir, "config.toml")
			Expect(os.WriteFile(path, []byte("[matching]\ntop_k = 9\n"), 0o600)).To(Succeed())

			v, err := config.InitViper(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(v.GetUint("matching.top_k")).To(Equal(uint(9)))
		})

		It("honors environment variables over file values", func() {
			Expect(os.Setenv("ECHOGUARD_API_LISTEN", ":6000")).To(Succeed())
			defer os.Unsetenv("ECHOGUARD_API_LISTEN")

			v, err := config.InitViper(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(v.GetString("api.listen")).To(Equal(":6000"))
		})
	})
})
