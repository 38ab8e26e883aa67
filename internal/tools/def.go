package tools

// ToolDef は外部コマンド 1 つ分の定義。tools/*.yaml から読み込むか、組み込み定義を使う。
type ToolDef struct {
	Name         string       `yaml:"name"`
	Binary       string       `yaml:"binary"`
	Description  string       `yaml:"description"`
	TimeoutSec   int          `yaml:"timeout"`
	ArgsTemplate string       `yaml:"args_template"`
	Output       OutputConfig `yaml:"output"`
}

// OutputConfig はレポート表示時の生出力の切り詰め設定。
type OutputConfig struct {
	HeadLines int `yaml:"head_lines"`
	TailLines int `yaml:"tail_lines"`
}

// ToTruncateConfig は未設定の値を既定値で埋めた TruncateConfig を返す。
func (o OutputConfig) ToTruncateConfig() TruncateConfig {
	cfg := TruncateConfig{HeadLines: o.HeadLines, TailLines: o.TailLines}
	if cfg.HeadLines <= 0 {
		cfg.HeadLines = DefaultTruncateConfig.HeadLines
	}
	if cfg.TailLines <= 0 {
		cfg.TailLines = DefaultTruncateConfig.TailLines
	}
	return cfg
}

// 組み込みツール名。
const (
	ToolPing       = "ping"
	ToolTraceroute = "traceroute"
	ToolNmap       = "nmap"
	ToolWhois      = "whois"
	ToolDig        = "dig"
	ToolCurl       = "curl"
)

// BuiltinDefs は tools ディレクトリが無くても動くための既定定義を返す。
// 呼び出しごとに新しいスライスを返す。
func BuiltinDefs() []*ToolDef {
	return []*ToolDef{
		{
			Name:         ToolPing,
			Binary:       "ping",
			Description:  "ICMP echo",
			TimeoutSec:   60,
			ArgsTemplate: "-c {count!} {host!}",
		},
		{
			Name:         ToolTraceroute,
			Binary:       "traceroute",
			Description:  "route discovery",
			TimeoutSec:   60,
			ArgsTemplate: "-m {max_hops} -q {queries} -w {wait} {host!}",
			Output:       OutputConfig{HeadLines: 40, TailLines: 10},
		},
		{
			Name:         ToolNmap,
			Binary:       "nmap",
			Description:  "single port scan",
			TimeoutSec:   60,
			ArgsTemplate: "-p {port!} -Pn {host!}",
		},
		{
			Name:         ToolWhois,
			Binary:       "whois",
			Description:  "registration lookup",
			TimeoutSec:   30,
			ArgsTemplate: "{host!}",
			Output:       OutputConfig{HeadLines: 60, TailLines: 20},
		},
		{
			Name:         ToolDig,
			Binary:       "dig",
			Description:  "delegation trace",
			TimeoutSec:   60,
			ArgsTemplate: "+trace {domain!}",
			Output:       OutputConfig{HeadLines: 60, TailLines: 20},
		},
		{
			Name:         ToolCurl,
			Binary:       "curl",
			Description:  "HTTP timing breakdown",
			TimeoutSec:   60,
			ArgsTemplate: "-sS -o /dev/null --proto =http,https -w {format!} {url!}",
		},
	}
}
