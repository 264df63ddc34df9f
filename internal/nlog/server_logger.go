/*
 * Copyright (c) 2026 Francesco Biribo'
 *
 * Permission to use, copy, modify, and distribute this software for any purpose with or without fee is hereby granted, provided that the above copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package nlog

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
)

// Logger is the capability every component gets injected: a single Logf.
type Logger interface {
	Logf(format string, v ...any)
}

type subsystemLogger struct {
	subsystem string
	logger    *ServerLogger
}

func (s *subsystemLogger) Logf(format string, v ...any) {
	s.logger.Logf(s.subsystem, format, v...)
}

type logEntry struct {
	subsystem string
	formatted string
}

// ServerLogger writes one log file per registered subsystem under a common
// directory. Writes go through an inbox channel so callers never block on
// file I/O while holding their own locks.
type ServerLogger struct {
	directory string

	fileMapper map[string]*os.File
	logMapper  map[string]*log.Logger

	lock           sync.RWMutex
	currentLogFunc func(*log.Logger, string, ...any)

	inbox chan logEntry
}

func NewServerLogger(directory string, logging bool) (*ServerLogger, error) {
	if err := os.MkdirAll(directory, 0755); err != nil {
		return nil, err
	}
	s := &ServerLogger{
		directory:      directory,
		fileMapper:     make(map[string]*os.File),
		logMapper:      make(map[string]*log.Logger),
		currentLogFunc: nilLogf,
		inbox:          make(chan logEntry, 600),
	}

	if logging {
		s.currentLogFunc = defaultLogf
	}

	return s, nil
}

func (s *ServerLogger) RegisterSubsystem(subsystem string) (Logger, error) {
	file, err := os.OpenFile(filepath.Join(s.directory, subsystem+".log"), os.O_WRONLY|os.O_APPEND|os.O_CREATE|os.O_TRUNC, 0666)
	if err != nil {
		return nil, err
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	s.logMapper[subsystem] = log.New(file, fmt.Sprintf("[%s]: ", subsystem), log.Ldate|log.Ltime)
	s.fileMapper[subsystem] = file
	return &subsystemLogger{subsystem, s}, nil
}

func (s *ServerLogger) GetSubsystemLogger(subsystem string) (Logger, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	if _, ok := s.logMapper[subsystem]; !ok {
		return nil, fmt.Errorf("The subsystem was not registered")
	}
	return &subsystemLogger{subsystem, s}, nil
}

func (s *ServerLogger) EnableLogging() {
	s.lock.Lock()
	s.currentLogFunc = defaultLogf
	s.lock.Unlock()
}

func (s *ServerLogger) DisableLogging() {
	s.lock.Lock()
	s.currentLogFunc = nilLogf
	s.lock.Unlock()
}

func (s *ServerLogger) Logf(subsystem, format string, v ...any) {
	s.inbox <- logEntry{subsystem, fmt.Sprintf(format, v...)}
}

func (s *ServerLogger) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-s.inbox:
			s.actualWrite(msg.subsystem, msg.formatted)
		}
	}
}

func (s *ServerLogger) actualWrite(subsystem, formatted string) error {
	s.lock.Lock()
	logFunc := s.currentLogFunc
	logger, ok := s.logMapper[subsystem]
	s.lock.Unlock()

	if !ok {
		return fmt.Errorf("Logger is not setup for this subsystem")
	}
	if logFunc != nil {
		logFunc(logger, formatted)
	}
	return nil
}

func (s *ServerLogger) CloseAll() {
	s.lock.Lock()
	defer s.lock.Unlock()

	for _, file := range s.fileMapper {
		file.Sync()
		file.Close()
	}
	clear(s.fileMapper)
	clear(s.logMapper)
}

func defaultLogf(l *log.Logger, format string, a ...any) {
	l.Printf(format, a...)
}

func nilLogf(*log.Logger, string, ...any) {}
