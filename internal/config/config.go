package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/0x6d61/connected/internal/destination"
	"github.com/0x6d61/connected/internal/probe"
	"github.com/0x6d61/connected/pkg/schema"
)

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// DefaultPath は -config 未指定時に読む設定ファイル。
const DefaultPath = "config/config.yaml"

// DNSConfig は Dns ツールの設定
type DNSConfig struct {
	Resolver string `yaml:"resolver"`
}

// DestinationConfig は組み込みの宛先ポリシーへの追加分
type DestinationConfig struct {
	BlockedTLDs  []string `yaml:"blocked_tlds"`
	DenyPatterns []string `yaml:"deny_patterns"`
}

// TimeoutConfig はツール実行のタイムアウト（ミリ秒）
type TimeoutConfig struct {
	DefaultMs int `yaml:"default_ms"`
}

// LogConfig はログ出力の設定
type LogConfig struct {
	Level string `yaml:"level"`
}

// TracerouteConfig は traceroute 結果の設定
type TracerouteConfig struct {
	IncludeRaw bool `yaml:"include_raw"`
}

// HistoryConfig はレポート履歴の保存先。Dir が空なら保存しない
type HistoryConfig struct {
	Dir string `yaml:"dir"`
}

// AppConfig は config/config.yaml の統合設定構造
type AppConfig struct {
	ToolsDir    string            `yaml:"tools_dir"`
	DNS         DNSConfig         `yaml:"dns"`
	Destination DestinationConfig `yaml:"destination"`
	Timeouts    TimeoutConfig     `yaml:"timeouts"`
	Log         LogConfig         `yaml:"log"`
	Traceroute  TracerouteConfig  `yaml:"traceroute"`
	History     HistoryConfig     `yaml:"history"`
}

// applyDefaults はゼロ値のフィールドにデフォルト値を適用する
func (c *AppConfig) applyDefaults() {
	if c.ToolsDir == "" {
		c.ToolsDir = "tools"
	}
	if c.DNS.Resolver == "" {
		c.DNS.Resolver = probe.DefaultResolver
	}
	c.Timeouts.DefaultMs = int(schema.ClampTimeout(c.Timeouts.DefaultMs).Milliseconds())
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Load は config/config.yaml を読み込む。
// 先に設定ファイルと同じディレクトリ、次にカレントディレクトリの .env を環境変数へ読み込み（既存の値は上書きしない）、
// 文字列中の ${VAR} を展開する。
// ファイルが存在しない場合はデフォルトの AppConfig を返す。
func Load(path string) (*AppConfig, error) {
	loadDotEnv(filepath.Join(filepath.Dir(path), ".env"), ".env")

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := &AppConfig{}
			cfg.applyDefaults()
			return cfg, nil
		}
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}

	cfg.ToolsDir = expandEnvString(cfg.ToolsDir)
	cfg.DNS.Resolver = expandEnvString(cfg.DNS.Resolver)
	cfg.History.Dir = expandEnvString(cfg.History.Dir)
	for i, p := range cfg.Destination.DenyPatterns {
		cfg.Destination.DenyPatterns[i] = expandEnvString(p)
	}
	for i, t := range cfg.Destination.BlockedTLDs {
		cfg.Destination.BlockedTLDs[i] = expandEnvString(t)
	}

	cfg.applyDefaults()

	if _, err := cfg.SlogLevel(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return &cfg, nil
}

// loadDotEnv は存在する .env だけを読み込む。同じファイルは 1 度だけ。
func loadDotEnv(paths ...string) {
	seen := map[string]bool{}
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil || seen[abs] {
			continue
		}
		seen[abs] = true
		if _, err := os.Stat(abs); err != nil {
			continue
		}
		_ = godotenv.Load(abs)
	}
}

// DestinationPolicy は組み込みポリシーに設定の追加分を重ねたものを返す。
func (c *AppConfig) DestinationPolicy() destination.Policy {
	return destination.DefaultPolicy().
		WithExtraTLDs(c.Destination.BlockedTLDs...).
		WithDenyPatterns(c.Destination.DenyPatterns...)
}

// SlogLevel は log.level を slog.Level に変換する。
func (c *AppConfig) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", c.Log.Level)
}

// expandEnvString は文字列内の ${VAR} をホスト環境変数で展開する
func expandEnvString(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		return os.Getenv(varName)
	})
}
