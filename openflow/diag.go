/*
 * Cherry - An OpenFlow Controller
 *
 * Copyright (C) 2015 Samjung Data Service, Inc. All rights reserved.
 * Kitae Kim <superkkt@sds.co.kr>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation; either version 2 of the License, or
 * any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License along
 * with this program; if not, write to the Free Software Foundation, Inc.,
 * 51 Franklin Street, Fifth Floor, Boston, MA 02110-1301 USA.
 */

package openflow

import (
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"github.com/op/go-logging"
	"golang.org/x/time/rate"
)

// diagSites bounds how many distinct log sites keep their own rate limiter.
const diagSites = 128

// Diagnostics logs protocol anomalies seen while decoding messages from a
// switch. A broken or hostile switch can produce them at line rate, so each
// log site is limited to one message per second with a small burst. A nil
// *Diagnostics is valid and silently drops everything.
type Diagnostics struct {
	logger *logging.Logger

	mu    sync.Mutex
	sites *lru.Cache
}

// NewDiagnostics returns diagnostics that log through logger, or through
// this package's logger when logger is nil.
func NewDiagnostics(logger *logging.Logger) *Diagnostics {
	if logger == nil {
		logger = logging.MustGetLogger("openflow")
	}
	sites, err := lru.New(diagSites)
	if err != nil {
		panic(err)
	}

	return &Diagnostics{logger: logger, sites: sites}
}

// Allow reports whether the named log site is within its rate budget. It is
// for callers that want to emit a group of related log lines under a single
// rate decision.
func (r *Diagnostics) Allow(site string) bool {
	if r == nil {
		return false
	}
	r.mu.Lock()
	limiter, ok := r.sites.Get(site)
	if !ok {
		limiter = rate.NewLimiter(1, 5)
		r.sites.Add(site, limiter)
	}
	r.mu.Unlock()

	return limiter.(*rate.Limiter).Allow()
}

// Warningf logs at warning level if the site is within its rate budget.
func (r *Diagnostics) Warningf(site, format string, args ...interface{}) {
	if r == nil || !r.Allow(site) {
		return
	}
	r.logger.Warningf(format, args...)
}

// Infof logs at info level if the site is within its rate budget.
func (r *Diagnostics) Infof(site, format string, args ...interface{}) {
	if r == nil || !r.Allow(site) {
		return
	}
	r.logger.Infof(format, args...)
}

// Logger returns the underlying logger for lines that have already passed an
// Allow check, or nil.
func (r *Diagnostics) Logger() *logging.Logger {
	if r == nil {
		return nil
	}

	return r.logger
}
