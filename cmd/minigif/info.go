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
	"flag"
	"fmt"

	"github.com/fatih/color"
	"github.com/xiaoqidun/minigif"
)

// runInfo 逐帧解码并打印结构信息
func runInfo(args []string) error {
	fs := flag.NewFlagSet("info", flag.ContinueOnError)
	var cf commonFlags
	cf.register(fs)
	path, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	src, err := openSource(path)
	if err != nil {
		return err
	}
	defer src.Close()
	opts := cf.options()
	opts.KeepComments = true
	dec, err := minigif.NewDecoder(src, nil, opts)
	if err != nil {
		return err
	}
	defer dec.Close()

	cyan := color.New(color.FgCyan).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	screen := dec.Screen()
	fmt.Printf("%s %s\n", cyan("file"), path)
	fmt.Printf("%s %dx%d, background %d, aspect %d\n", cyan("screen"),
		screen.Width, screen.Height, screen.BackgroundIndex, screen.AspectRatio)
	if screen.GlobalTablePresent() {
		fmt.Printf("%s %d entries, %d bit colour resolution\n", cyan("global table"),
			screen.GlobalTableSize(), screen.ColorResolution())
	}
	for {
		res, err := dec.RenderFrame()
		if err != nil {
			return fmt.Errorf("frame %d: %w", dec.Frames(), err)
		}
		if res == minigif.ResultGIFEnd {
			break
		}
		desc, gce := dec.Image(), dec.GraphicControl()
		fmt.Printf("%s %3d  %dx%d+%d+%d  delay %d  disposal %d", yellow("frame"), dec.Frames()-1,
			desc.Width, desc.Height, desc.X, desc.Y, dec.FrameDelay(), gce.Disposal())
		if gce.Transparent() {
			fmt.Printf("  transparent %d", gce.TransparentIndex)
		}
		if desc.Interlaced() {
			fmt.Print("  interlaced")
		}
		if desc.LocalTablePresent() {
			fmt.Printf("  local table %d", desc.LocalTableSize())
		}
		fmt.Println()
	}
	fmt.Printf("%s %d\n", cyan("frames"), dec.Frames())
	switch n := dec.LoopCount(); {
	case n == 0:
		fmt.Printf("%s forever\n", cyan("loop"))
	case n > 0:
		fmt.Printf("%s %d\n", cyan("loop"), n)
	}
	for _, c := range dec.Comments() {
		fmt.Printf("%s %q\n", cyan("comment"), c)
	}
	return nil
}
