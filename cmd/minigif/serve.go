// Copyright 2026 肖其顿 (XIAO QI DUN)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/gorilla/websocket"
	"github.com/xiaoqidun/minigif"
)

// streamHeader 连接建立后发送的首条文本消息
type streamHeader struct {
	Width  int `json:"width"`
	Height int `json:"height"`
	Loop   int `json:"loop"`
}

// player 向WebSocket客户端推送RGB帧
type player struct {
	data     []byte
	opts     *minigif.Options
	loop     bool
	logger   *log.Logger
	upgrader websocket.Upgrader
}

// runServe 启动WebSocket推流服务
func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	var cf commonFlags
	cf.register(fs)
	addr := fs.String("addr", "127.0.0.1:8080", "listen address")
	once := fs.Bool("once", false, "play the animation once instead of looping")
	path, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	src, err := openSource(path)
	if err != nil {
		return err
	}
	data, err := io.ReadAll(src)
	src.Close()
	if err != nil {
		return fmt.Errorf("%w: %w", minigif.ErrIO, err)
	}
	if _, err := minigif.NewDecoder(minigif.NewMemorySource(data), nil, cf.options()); err != nil {
		return err
	}
	p := &player{
		data:   data,
		opts:   cf.options(),
		loop:   !*once,
		logger: log.New(os.Stdout, "[serve] ", log.LstdFlags),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	mux := http.NewServeMux()
	mux.Handle("/", p)
	p.logger.Printf("streaming %s on %s", path, color.CyanString("ws://%s/", *addr))
	return http.ListenAndServe(*addr, mux)
}

func (p *player) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := p.upgrader.Upgrade(w, r, nil)
	if err != nil {
		p.logger.Printf("upgrade failed: %v", err)
		return
	}
	defer conn.Close()
	p.logger.Printf("client %s connected", conn.RemoteAddr())

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	err = p.stream(ctx, conn)
	switch {
	case err == nil:
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	case errors.Is(err, context.Canceled):
	default:
		p.logger.Printf("client %s: %s: %v", conn.RemoteAddr(), errorKind(err), err)
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseUnsupportedData, err.Error()))
	}
	p.logger.Printf("client %s disconnected", conn.RemoteAddr())
}

// stream 逐帧解码并按帧延迟推送, 到达尾部时回绕
func (p *player) stream(ctx context.Context, conn *websocket.Conn) error {
	var canvas *minigif.Canvas
	dec, err := minigif.NewDecoder(minigif.NewMemorySource(p.data), minigif.PainterFunc(func(x, y int, c minigif.RGB) {
		canvas.Paint(x, y, c)
	}), p.opts)
	if err != nil {
		return err
	}
	defer dec.Close()
	canvas = minigif.NewCanvas(dec.Width(), dec.Height())
	header, err := json.Marshal(streamHeader{Width: dec.Width(), Height: dec.Height(), Loop: dec.LoopCount()})
	if err != nil {
		return err
	}
	if err := conn.WriteMessage(websocket.TextMessage, header); err != nil {
		return err
	}
	buf := make([]byte, 0, dec.Width()*dec.Height()*3)
	rendered := 0
	for {
		before := canvas.Image()
		res, err := dec.RenderFrame()
		if err != nil {
			return err
		}
		if res == minigif.ResultGIFEnd {
			if !p.loop || rendered == 0 {
				return nil
			}
			if err := dec.Rewind(); err != nil {
				return err
			}
			canvas.Clear(canvas.RGBA().Rect)
			rendered = 0
			continue
		}
		rendered++
		buf = canvas.AppendRGB(buf[:0])
		if err := conn.WriteMessage(websocket.BinaryMessage, buf); err != nil {
			return err
		}
		rect := dec.Image().Bounds()
		switch dec.GraphicControl().Disposal() {
		case minigif.DisposalBackground:
			canvas.Clear(rect)
		case minigif.DisposalPrevious:
			canvas.Restore(before, rect)
		}
		delay := time.Duration(dec.FrameDelay()) * 10 * time.Millisecond
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}
