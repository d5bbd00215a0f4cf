// Package logsvc prints log lines and reports warnings and errors to Rollbar.
package logsvc

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/biglotteryfund/funding/core"
	"github.com/biglotteryfund/funding/core/user"
)

type level int

const (
	levelDebug level = iota
	levelInfo
	levelWarn
	levelError
	levelFatal
)

var levelNames = map[level]string{
	levelDebug: "DEBUG",
	levelInfo:  "INFO",
	levelWarn:  "WARN",
	levelError: "ERROR",
	levelFatal: "FATAL",
}

// RollbarLogger writes to a standard logger and sends the same entries to Rollbar when enabled.
// Debug lines are only printed in debug mode.
type RollbarLogger struct {
	std   *log.Logger
	token string
	debug bool
	exit  func(code int)
}

var exitFunc = os.Exit

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(strings.ToLower(conf.Env))
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	rollbar.SetEnabled(conf.RollbarToken != "" && !conf.Debug)
	return &RollbarLogger{std: std, token: conf.RollbarToken, debug: conf.Debug, exit: exitFunc}
}

// Enable turns Rollbar reporting on or off; lines are still printed.
func (l *RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled && l.token != "")
}

// entry splits the args into what Rollbar expects: the error, extra fields and the user concerned.
type entry struct {
	msg    string
	err    error
	extras map[string]interface{}
	usr    *user.User
	rest   []interface{}
}

func newEntry(msg string, args []interface{}) entry {
	e := entry{msg: msg}
	for _, arg := range args {
		switch a := arg.(type) {
		case error:
			if e.err == nil {
				e.err = a
				continue
			}
			e.rest = append(e.rest, a)
		case map[string]interface{}:
			if e.extras == nil {
				e.extras = make(map[string]interface{}, len(a))
			}
			for k, v := range a {
				e.extras[k] = v
			}
		case user.User:
			if e.usr == nil {
				usr := a
				e.usr = &usr
			}
		default:
			e.rest = append(e.rest, a)
		}
	}
	if len(e.rest) > 0 {
		if e.extras == nil {
			e.extras = make(map[string]interface{}, 1)
		}
		e.extras["args"] = e.rest
	}
	return e
}

func (e entry) String() string {
	var b strings.Builder
	b.WriteString(e.msg)
	if e.err != nil {
		b.WriteString(": ")
		b.WriteString(e.err.Error())
	}
	if e.usr != nil {
		fmt.Fprintf(&b, " user=%s", e.usr.ID)
	}
	for _, arg := range e.rest {
		fmt.Fprintf(&b, " %+v", arg)
	}
	return b.String()
}

func (l *RollbarLogger) report(lvl level, e entry) {
	if e.usr != nil {
		rollbar.SetPerson(e.usr.ID, e.usr.Username, e.usr.Email)
		defer rollbar.ClearPerson()
	}

	var rlvl string
	switch lvl {
	case levelDebug:
		rlvl = rollbar.DEBUG
	case levelInfo:
		rlvl = rollbar.INFO
	case levelWarn:
		rlvl = rollbar.WARN
	case levelError:
		rlvl = rollbar.ERR
	default:
		rlvl = rollbar.CRIT
	}

	if e.err != nil {
		rollbar.ErrorWithExtrasAndContext(context.Background(), rlvl, e.err, mergeExtras(e.extras, "message", e.msg))
		return
	}
	rollbar.MessageWithExtras(rlvl, e.msg, e.extras)
}

func mergeExtras(extras map[string]interface{}, k string, v interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(extras)+1)
	for key, val := range extras {
		out[key] = val
	}
	out[k] = v
	return out
}

func (l *RollbarLogger) log(lvl level, msg string, args []interface{}) {
	if lvl == levelDebug && !l.debug {
		return
	}
	e := newEntry(msg, args)
	l.report(lvl, e)
	l.std.Printf("%s %s", levelNames[lvl], e)
}

func (l *RollbarLogger) Debug(msg string, args ...interface{}) { l.log(levelDebug, msg, args) }
func (l *RollbarLogger) Info(msg string, args ...interface{})  { l.log(levelInfo, msg, args) }
func (l *RollbarLogger) Warn(msg string, args ...interface{})  { l.log(levelWarn, msg, args) }
func (l *RollbarLogger) Error(msg string, args ...interface{}) { l.log(levelError, msg, args) }

// Fatal reports, waits for Rollbar to flush and exits.
func (l *RollbarLogger) Fatal(msg string, args ...interface{}) {
	l.log(levelFatal, msg, args)
	rollbar.Wait()
	l.exit(1)
}
