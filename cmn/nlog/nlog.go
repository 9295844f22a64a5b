// Package nlog is the package-level logger shared by this module's
// packages. It follows the teacher's nlog API (severity-named top-level
// functions, no injected *log.Logger per call site) but drops the
// multi-process file-rotation machinery that package exists to serve in
// a storage cluster: a client library writes to one stream at a time and
// has no on-disk log of its own.
package nlog

import (
	"io"
	"log"
	"os"
)

var std = log.New(os.Stderr, "", log.LstdFlags|log.Lmicroseconds)

// SetOutput redirects the package logger, mainly for tests.
func SetOutput(w io.Writer) { std.SetOutput(w) }

func Infof(format string, args ...any)    { std.Printf("I "+format, args...) }
func Infoln(args ...any)                  { std.Println(append([]any{"I"}, args...)...) }
func Warningf(format string, args ...any) { std.Printf("W "+format, args...) }
func Warningln(args ...any)               { std.Println(append([]any{"W"}, args...)...) }
func Errorf(format string, args ...any)   { std.Printf("E "+format, args...) }
func Errorln(args ...any)                 { std.Println(append([]any{"E"}, args...)...) }
