// Package shared provides the process-capture helper used by the module and
// path execution strategies.
package shared

import (
	"bytes"
	"errors"
	"os/exec"
	"strings"
)

// Capture runs cmd to completion, capturing standard output and standard
// error in full. When useStdin is set, source is written to the process's
// input stream and the stream is closed to signal end of input.
//
// A non-zero exit status does not produce an error: it folds into the
// returned stderr text (the exit message stands in when the tool wrote
// nothing to stderr). A non-nil error means the process could not be run at
// all.
func Capture(cmd *exec.Cmd, source string, useStdin bool) (stdout, stderr string, err error) {
	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf
	if useStdin {
		cmd.Stdin = strings.NewReader(source)
	}

	runErr := cmd.Run()
	stdout = outBuf.String()
	stderr = errBuf.String()

	if runErr != nil {
		var exit *exec.ExitError
		if errors.As(runErr, &exit) {
			if stderr == "" {
				stderr = exit.Error()
			}
			return stdout, stderr, nil
		}
		return stdout, stderr, runErr
	}
	return stdout, stderr, nil
}
