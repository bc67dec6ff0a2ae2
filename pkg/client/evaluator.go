package client

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

var (
	getRegex     = `^get\s+(\S+)(?:\s+(\S+))?$`
	putRegex     = `^put\s+(\S+)(?:\s+(\S+))?$`
	timeoutRegex = `^timeout\s+(\d+)$`
	connectRegex = `^connect\s+(\S+)(?:\s+(\d+))?$`
	dirRegex     = `^dir$`
	traceRegex   = `^trace$`
	quitRegex    = `^quit$`
	helpRegex    = `^help$`
)

const helpText = `Commands:
  connect <host> [port]        - set the server to exchange files with
  get remote_file [local_file] - get a file from server and save it as local_file
  put local_file [remote_file] - send a file to server and store it as remote_file
  dir                          - obtain a listing of remote files
  timeout <seconds>            - set the inactivity timeout of a transfer
  trace                        - toggle per-block tracing
  quit                         - exit TFTP client`

type Evaluator struct {
	l             *zap.SugaredLogger
	client        Connector
	out           io.Writer
	regexPatterns map[string]*regexp.Regexp
	line          string
}

func NewEvaluator(l *zap.SugaredLogger, client Connector, out io.Writer) *Evaluator {
	e := &Evaluator{
		l:      l,
		client: client,
		out:    out,
	}

	e.regexPatterns = make(map[string]*regexp.Regexp)

	e.regexPatterns["get"] = regexp.MustCompile(getRegex)
	e.regexPatterns["put"] = regexp.MustCompile(putRegex)
	e.regexPatterns["timeout"] = regexp.MustCompile(timeoutRegex)
	e.regexPatterns["connect"] = regexp.MustCompile(connectRegex)
	e.regexPatterns["dir"] = regexp.MustCompile(dirRegex)
	e.regexPatterns["trace"] = regexp.MustCompile(traceRegex)
	e.regexPatterns["quit"] = regexp.MustCompile(quitRegex)
	e.regexPatterns["help"] = regexp.MustCompile(helpRegex)

	return e
}

func (e *Evaluator) evaluate() (bool, error) {
	e.line = strings.TrimSpace(e.line)
	e.l.Debugf("evaluating %q", e.line)

	if e.line == "" {
		return false, nil
	}

	if matches := e.regexPatterns["get"].FindStringSubmatch(e.line); len(matches) == 3 {
		res, err := e.client.Get(matches[1], matches[2])
		if err != nil {
			return false, err
		}

		fmt.Fprintf(e.out, "Received file '%s' %d bytes.\n", matches[1], res.Bytes)

		return false, nil
	}

	if matches := e.regexPatterns["put"].FindStringSubmatch(e.line); len(matches) == 3 {
		res, err := e.client.Put(matches[1], matches[2])
		if err != nil {
			return false, err
		}

		fmt.Fprintf(e.out, "Sent file '%s' %d bytes.\n", matches[1], res.Bytes)

		return false, nil
	}

	if matches := e.regexPatterns["timeout"].FindStringSubmatch(e.line); len(matches) == 2 {
		n, err := strconv.ParseUint(matches[1], 10, 32)
		if err != nil || n == 0 {
			return false, fmt.Errorf("timeout value can not be parsed: %s", matches[1])
		}

		e.client.SetTimeout(uint(n))

		return false, nil
	}

	if matches := e.regexPatterns["connect"].FindStringSubmatch(e.line); len(matches) == 3 {
		addr := matches[1]
		if matches[2] != "" {
			addr = fmt.Sprintf("%s:%s", matches[1], matches[2])
		}

		return false, e.client.Connect(addr)
	}

	if e.regexPatterns["dir"].MatchString(e.line) {
		entries, err := e.client.Dir()
		if err != nil {
			return false, err
		}

		for _, entry := range entries {
			fmt.Fprintf(e.out, "%-20s %-20s %20s\n", entry.Name, entry.Date, entry.Size)
		}

		fmt.Fprintln(e.out)

		return false, nil
	}

	if e.regexPatterns["trace"].MatchString(e.line) {
		e.client.SetTrace()

		return false, nil
	}

	if e.regexPatterns["help"].MatchString(e.line) {
		fmt.Fprintln(e.out, helpText)

		return false, nil
	}

	if e.regexPatterns["quit"].MatchString(e.line) {
		return true, nil
	}

	return false, fmt.Errorf("unknown command: '%s'", strings.Fields(e.line)[0])
}
