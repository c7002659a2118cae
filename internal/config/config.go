package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/CorentinGC/venus-optimizer/internal/dex/core"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Chain struct {
		Network string `yaml:"network"`
		RPCHTTP string `yaml:"rpc_http"`
	} `yaml:"chain"`

	DEX struct {
		Venues       []core.VenueID `yaml:"venues"`
		V2Router     string         `yaml:"v2_router"`
		V3QuoterV2   string         `yaml:"v3_quoter_v2"`
		V3Quoter     string         `yaml:"v3_quoter"`
		Multicall    string         `yaml:"multicall"`
		FeeTiers     []uint32       `yaml:"fee_tiers"`
		WrappedNativ string         `yaml:"wrapped_native"`
	} `yaml:"dex"`

	Tokens struct {
		// Overrides maps SYMBOL -> address and takes precedence over the
		// built-in table. VENUS_TOKEN_<SYMBOL> env vars override both.
		Overrides map[string]string `yaml:"overrides"`
		// Intermediates are the preferred multi-hop pivot symbols.
		Intermediates []string `yaml:"intermediates"`
	} `yaml:"tokens"`

	Router struct {
		CallTimeoutMs       int  `yaml:"call_timeout_ms"`
		MaxConcurrentQuotes int  `yaml:"max_concurrent_quotes"`
		MaxHops             int  `yaml:"max_hops"`
		SplitStepPercent    int  `yaml:"split_step_percent"`
		AllowMultiHop       bool `yaml:"allow_multi_hop"`
		AllowSplitRouting   bool `yaml:"allow_split_routing"`
	} `yaml:"router"`

	Aggregator struct {
		BaseURL   string `yaml:"base_url"`
		APIKey    string `yaml:"api_key"`
		ChainID   int64  `yaml:"chain_id"`
		TimeoutMs int    `yaml:"timeout_ms"`
	} `yaml:"aggregator"`

	Feed struct {
		RedisAddr string `yaml:"redis_addr"`
		Channel   string `yaml:"channel"`
	} `yaml:"feed"`

	Metrics struct {
		ListenAddr string `yaml:"listen_addr"`
	} `yaml:"metrics"`
}

// Load reads the yaml config, applies defaults, then applies environment
// overrides (env always wins over file).
func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	c.applyDefaults()
	c.applyEnv()
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.Chain.Network == "" {
		c.Chain.Network = "bsc"
	}
	if len(c.DEX.Venues) == 0 {
		c.DEX.Venues = []core.VenueID{core.VenuePancakeV2, core.VenuePancakeV3}
	}
	if c.DEX.V2Router == "" {
		c.DEX.V2Router = "0x10ED43C718714eb63d5aA57B78B54704E256024E"
	}
	if c.DEX.V3QuoterV2 == "" {
		c.DEX.V3QuoterV2 = "0xB048Bbc1Ee6b733FFfCFb9e9CeF7375518e25997"
	}
	if c.DEX.Multicall == "" {
		c.DEX.Multicall = "0xcA11bde05977b3631167028862bE2a173976CA11"
	}
	if c.DEX.WrappedNativ == "" {
		c.DEX.WrappedNativ = "WBNB"
	}
	if len(c.DEX.FeeTiers) == 0 {
		c.DEX.FeeTiers = []uint32{100, 500, 2500, 10000}
	}
	if len(c.Tokens.Intermediates) == 0 {
		c.Tokens.Intermediates = []string{"WBNB", "USDT", "BUSD", "USDC"}
	}
	if c.Router.CallTimeoutMs == 0 {
		c.Router.CallTimeoutMs = 5000
	}
	if c.Router.MaxConcurrentQuotes == 0 {
		c.Router.MaxConcurrentQuotes = 32
	}
	if c.Router.MaxHops == 0 {
		c.Router.MaxHops = 3
	}
	if c.Router.SplitStepPercent == 0 {
		c.Router.SplitStepPercent = 10
	}
	if c.Aggregator.ChainID == 0 {
		c.Aggregator.ChainID = 56
	}
	if c.Aggregator.TimeoutMs == 0 {
		c.Aggregator.TimeoutMs = 4000
	}
	if c.Feed.Channel == "" {
		c.Feed.Channel = "venus.quotes"
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv("VENUS_RPC_HTTP"); v != "" {
		c.Chain.RPCHTTP = v
	}
	if v := os.Getenv("VENUS_AGGREGATOR_URL"); v != "" {
		c.Aggregator.BaseURL = v
	}
	if v := os.Getenv("VENUS_AGGREGATOR_API_KEY"); v != "" {
		c.Aggregator.APIKey = v
	}
	if v := os.Getenv("VENUS_REDIS_ADDR"); v != "" {
		c.Feed.RedisAddr = v
	}
	for _, kv := range os.Environ() {
		const prefix = "VENUS_TOKEN_"
		if !strings.HasPrefix(kv, prefix) {
			continue
		}
		rest := strings.TrimPrefix(kv, prefix)
		eq := strings.IndexByte(rest, '=')
		if eq <= 0 || rest[eq+1:] == "" {
			continue
		}
		if c.Tokens.Overrides == nil {
			c.Tokens.Overrides = make(map[string]string)
		}
		c.Tokens.Overrides[strings.ToUpper(rest[:eq])] = rest[eq+1:]
	}
}

func (c *Config) CallTimeout() time.Duration {
	return time.Duration(c.Router.CallTimeoutMs) * time.Millisecond
}

func (c *Config) AggregatorTimeout() time.Duration {
	return time.Duration(c.Aggregator.TimeoutMs) * time.Millisecond
}
