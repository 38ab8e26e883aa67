//go:build !unix

package tools

import "os"

func signalName(ps *os.ProcessState) string {
	return ""
}
