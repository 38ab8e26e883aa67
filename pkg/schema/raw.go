package schema

// RawOutput is the captured result of one completed external tool invocation.
//
// nil のフィールドは「取得されなかった」ことを表す。
// 特に Stdout が nil の場合、パーサーは結果なし（nil）を返す。
type RawOutput struct {
	ExitCode *int    `json:"exitCode"`
	Signal   *string `json:"signal"`
	Stdout   *string `json:"stdout,omitempty"`
	Stderr   *string `json:"stderr,omitempty"`
}

// StdoutText は Stdout を文字列で返す。nil なら空文字。
func (r *RawOutput) StdoutText() string {
	if r == nil || r.Stdout == nil {
		return ""
	}
	return *r.Stdout
}

// StderrText は Stderr を文字列で返す。nil なら空文字。
func (r *RawOutput) StderrText() string {
	if r == nil || r.Stderr == nil {
		return ""
	}
	return *r.Stderr
}

// Succeeded reports whether the process exited with status 0.
func (r *RawOutput) Succeeded() bool {
	return r != nil && r.ExitCode != nil && *r.ExitCode == 0
}
