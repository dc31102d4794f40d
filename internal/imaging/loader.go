/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package imaging

import (
	"context"
	"image"
	"log/slog"
	"sync"

	applog "pagecomposer/internal/log"
)

// Ready reports the outcome of one decode request.
type Ready struct {
	PageID  string
	LayerID string
	Source  string
	Image   image.Image
	Err     error
}

// Loader decodes images on background goroutines. Results arrive on Ready()
// and must be applied to the model by the channel's reader only.
type Loader struct {
	log    *slog.Logger
	ready  chan Ready
	sem    chan struct{}
	closed chan struct{}

	mu       sync.Mutex
	isClosed bool
	wg       sync.WaitGroup
}

// NewLoader starts a loader running at most workers decodes at a time.
func NewLoader(workers int) *Loader {
	if workers <= 0 {
		workers = 2
	}
	return &Loader{
		log:    applog.WithComponent("imaging"),
		ready:  make(chan Ready, 64),
		sem:    make(chan struct{}, workers),
		closed: make(chan struct{}),
	}
}

// Ready returns the notification channel. It is closed by Close once every
// in-flight request has finished.
func (l *Loader) Ready() <-chan Ready { return l.ready }

// Request schedules src for decoding and returns immediately. Requests after
// Close are ignored.
func (l *Loader) Request(ctx context.Context, pageID, layerID, src string) {
	l.mu.Lock()
	if l.isClosed {
		l.mu.Unlock()
		return
	}
	l.wg.Add(1)
	l.mu.Unlock()

	go func() {
		defer l.wg.Done()
		select {
		case l.sem <- struct{}{}:
		case <-ctx.Done():
			return
		case <-l.closed:
			return
		}
		img, format, err := Decode(src)
		<-l.sem

		lg := applog.WithTarget(applog.WithOperation(l.log, "decode"), pageID, layerID)
		if err != nil {
			lg.Warn("image decode failed", slog.Any("err", err))
		} else {
			b := img.Bounds()
			lg.Debug("image decoded", slog.String("format", format), slog.Int("w", b.Dx()), slog.Int("h", b.Dy()))
		}
		res := Ready{PageID: pageID, LayerID: layerID, Source: src, Image: img, Err: err}
		select {
		case <-l.closed:
			return
		case <-ctx.Done():
			return
		default:
		}
		select {
		case l.ready <- res:
		case <-l.closed:
		case <-ctx.Done():
		}
	}()
}

// Close stops delivery, waits for outstanding goroutines and closes Ready().
// Results still in flight are dropped.
func (l *Loader) Close() {
	l.mu.Lock()
	if l.isClosed {
		l.mu.Unlock()
		return
	}
	l.isClosed = true
	close(l.closed)
	l.mu.Unlock()
	l.wg.Wait()
	close(l.ready)
}
