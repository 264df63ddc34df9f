/*
 * Copyright (c) 2026 Francesco Biribo'
 *
 * Permission to use, copy, modify, and distribute this software for any purpose with or without fee is hereby granted, provided that the above copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package data

import "sync"

// StoreGuard is the single mutual-exclusion resource guarding the store's
// critical section. Every read-modify-write span, and every multi-step read
// that must observe a consistent snapshot, holds it end to end. One global
// lock instead of per-row locking: correctness over throughput, which is the
// right tradeoff at chat scale.
type StoreGuard struct {
	mu sync.Mutex
}

func NewStoreGuard() *StoreGuard {
	return &StoreGuard{}
}

func (g *StoreGuard) Lock() {
	g.mu.Lock()
}

func (g *StoreGuard) Unlock() {
	g.mu.Unlock()
}
