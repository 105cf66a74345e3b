//
// Copyright (c) 2014-2019 Cesanta Software Limited
// All rights reserved
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//

// Package flasher drives the ESP32 ROM/stub-loader write sequence for a
// resolved FlashPlan: sync, baud change, stub upload, then per-region
// FLASH_BEGIN/DATA/END with progress and digest verification. Structure
// (per-block timeouts, progress reporting) is adapted from the teacher's
// writeImages; unlike it, nothing here retries a failed block or region.
// The wire byte layout it drives is
// espproto, grounded on sxwebdev-esp32flasher's protocol file since the
// teacher's own ROM client wasn't in the retrieval pack.
package flasher

import (
	"context"
	"crypto/md5"
	"sync"
	"time"

	"github.com/cesanta/go-serial/serial"
	"github.com/juju/errors"
	"github.com/mongoose-os/espbrewd/internal/assembler"
	"github.com/mongoose-os/espbrewd/internal/broker"
	"github.com/mongoose-os/espbrewd/internal/chiptypes"
	"github.com/mongoose-os/espbrewd/internal/espproto"
)

const (
	flashBlockSize    = 0x4000
	perBlockTimeout   = 10 * time.Second
	perRegionTimeout  = 120 * time.Second
	wholeJobTimeout   = 10 * time.Minute
	defaultFlashBaud  = 460800
	syncBaud          = 115200
	syncRetries       = 7
	syncRetryDelay    = 100 * time.Millisecond
	syncReadTimeout   = 100 * time.Millisecond
	commandReadTimeout = 10 * time.Second
)

// JobStatus is a FlashJob's lifecycle state.
type JobStatus string

const (
	JobRunning JobStatus = "Running"
	JobOk      JobStatus = "Ok"
	JobFailed  JobStatus = "Failed"
)

// FailureKind classifies why a FlashJob failed and is retained with the
// job record. The HTTP surface maps FailureBusy to 409 "flashing" and
// reports every other kind as "flash_error".
type FailureKind string

const (
	FailureNone        FailureKind = ""
	FailureTimeout     FailureKind = "timeout"
	FailureProtocol    FailureKind = "protocol"
	FailureIO          FailureKind = "io"
	FailureBusy        FailureKind = "busy"
	FailureNoStubImage FailureKind = "no_stub_image"
)

// FlashJob tracks one flash operation's progress and outcome.
type FlashJob struct {
	BoardID      string
	Plan         *assembler.FlashPlan
	StartedAt    time.Time
	FinishedAt   time.Time
	ProgressB    uint64
	TotalBytes   uint64
	Status       JobStatus
	FailureKind  FailureKind
	ErrorMessage string
}

// StubImage is one variant's RAM-resident flasher stub: a code segment
// and a data segment, each with its own load address, plus the entry
// point the ROM loader jumps to once both are in place.
type StubImage struct {
	Code      []byte
	CodeStart uint32
	Data      []byte
	DataStart uint32
	Entry     uint32
}

// StubProvider supplies the ROM-resident stub loader image for a chip
// variant. Implementations load these from data embedded at build time
// (the stub images themselves are produced by the esptool project, not
// generated by this server); this keeps the Flash Executor from ever
// fabricating protocol firmware itself.
type StubProvider interface {
	Stub(v chiptypes.Variant) (*StubImage, error)
}

// Broker is the subset of *broker.Broker the Flash Executor needs.
type Broker interface {
	HandoffToFlash(boardID string) (*broker.FlashGuard, error)
	OpenForFlash(boardID, path string, baud uint) (serial.Serial, error)
}

// Executor runs flashes, guaranteeing at most one Running FlashJob per
// board via a per-board mutex acquired before the handoff and released
// after completion.
type Executor struct {
	broker Broker
	stubs  StubProvider

	mu         sync.Mutex
	boardLocks map[string]chan struct{} // 1-buffered: a board's flash mutex, try-lock via non-blocking send
	jobs       map[string]*FlashJob     // last job per board
}

func New(b Broker, stubs StubProvider) *Executor {
	return &Executor{broker: b, stubs: stubs, boardLocks: make(map[string]chan struct{}), jobs: make(map[string]*FlashJob)}
}

func (e *Executor) lockFor(boardID string) chan struct{} {
	e.mu.Lock()
	defer e.mu.Unlock()
	m, ok := e.boardLocks[boardID]
	if !ok {
		m = make(chan struct{}, 1)
		e.boardLocks[boardID] = m
	}
	return m
}

// tryLock acquires the per-board flash mutex without blocking: a busy
// board returns false immediately, matching §5's "flash requests on a
// busy board return 409 immediately; requests never queue server-side".
func tryLock(lock chan struct{}) bool {
	select {
	case lock <- struct{}{}:
		return true
	default:
		return false
	}
}

func unlock(lock chan struct{}) {
	<-lock
}

// Job returns the last FlashJob recorded for boardID, if any.
func (e *Executor) Job(boardID string) (*FlashJob, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	j, ok := e.jobs[boardID]
	return j, ok
}

// Flash runs the full flash sequence against portPath for boardID. It
// never retries implicitly (§4.6: "retries are the caller's decision").
func (e *Executor) Flash(boardID, portPath string, plan *assembler.FlashPlan, flashBaud uint) (*FlashJob, error) {
	lock := e.lockFor(boardID)
	if !tryLock(lock) {
		err := errors.Errorf("flash already running for board %q", boardID)
		busy := &FlashJob{BoardID: boardID, Plan: plan, StartedAt: time.Now()}
		e.fail(busy, FailureBusy, err)
		return busy, err
	}
	defer unlock(lock)

	job := &FlashJob{BoardID: boardID, Plan: plan, StartedAt: time.Now(), Status: JobRunning}
	for _, r := range plan.Regions {
		job.TotalBytes += uint64(len(r.Data))
	}
	e.mu.Lock()
	e.jobs[boardID] = job
	e.mu.Unlock()

	guard, err := e.broker.HandoffToFlash(boardID)
	if err != nil {
		e.fail(job, FailureBusy, err)
		return job, err
	}
	defer guard.Release()

	if flashBaud == 0 {
		flashBaud = defaultFlashBaud
	}

	ctx, cancel := context.WithTimeout(context.Background(), wholeJobTimeout)
	defer cancel()

	if err := e.run(ctx, job, boardID, portPath, plan, flashBaud); err != nil {
		kind := classify(err)
		e.fail(job, kind, err)
		return job, err
	}

	job.Status = JobOk
	job.FinishedAt = time.Now()
	return job, nil
}

func (e *Executor) fail(job *FlashJob, kind FailureKind, err error) {
	job.Status = JobFailed
	job.FailureKind = kind
	job.ErrorMessage = err.Error()
	job.FinishedAt = time.Now()
}

func classify(err error) FailureKind {
	for e := err; e != nil; {
		if je, ok := e.(*jobError); ok {
			return je.kind
		}
		u, ok := e.(interface{ Underlying() error })
		if !ok {
			break
		}
		e = u.Underlying()
	}
	switch errors.Cause(err) {
	case context.DeadlineExceeded:
		return FailureTimeout
	default:
		return FailureProtocol
	}
}

func (e *Executor) run(ctx context.Context, job *FlashJob, boardID, portPath string, plan *assembler.FlashPlan, flashBaud uint) error {
	port, err := e.broker.OpenForFlash(boardID, portPath, syncBaud)
	if err != nil {
		return errors.Annotate(err, "opening port")
	}
	defer port.Close()

	if err := sync(port); err != nil {
		return errors.Trace(err)
	}

	if flashBaud != syncBaud {
		if err := changeBaud(port, flashBaud); err != nil {
			return errors.Trace(err)
		}
		// cesanta/go-serial has no in-place baud change; reopen the port at
		// the new rate to match what the ROM loader just switched to.
		port.Close()
		port, err = e.broker.OpenForFlash(boardID, portPath, flashBaud)
		if err != nil {
			return errors.Annotate(err, "reopening port at flash baud")
		}
		defer port.Close()
	}

	if e.stubs != nil {
		stub, err := e.stubs.Stub(plan.TargetVariant)
		if err != nil {
			return &jobError{kind: FailureNoStubImage, err: err}
		}
		if err := uploadStub(port, stub); err != nil {
			return errors.Annotate(err, "uploading stub loader")
		}
	}

	for _, region := range plan.Regions {
		regionCtx, cancel := context.WithTimeout(ctx, perRegionTimeout)
		err := writeRegion(regionCtx, port, region, job)
		cancel()
		if err != nil {
			return errors.Annotatef(err, "writing region %q @ 0x%x", region.Name, region.Offset)
		}
	}

	return flashEnd(port, true)
}

type jobError struct {
	kind FailureKind
	err  error
}

func (e *jobError) Error() string { return e.err.Error() }
func (e *jobError) Cause() error  { return e.err }

func writeRegion(ctx context.Context, port serial.Serial, region assembler.FlashRegion, job *FlashJob) error {
	numBlocks := (len(region.Data) + flashBlockSize - 1) / flashBlockSize
	if numBlocks == 0 {
		numBlocks = 1
	}
	if err := flashBegin(port, region.Offset, uint32(len(region.Data)), flashBlockSize, uint32(numBlocks)); err != nil {
		return errors.Trace(err)
	}

	for i := 0; i < numBlocks; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		start := i * flashBlockSize
		end := start + flashBlockSize
		if end > len(region.Data) {
			end = len(region.Data)
		}
		block := region.Data[start:end]
		if len(block) < flashBlockSize {
			padded := make([]byte, flashBlockSize)
			copy(padded, block)
			for j := len(block); j < flashBlockSize; j++ {
				padded[j] = 0xff
			}
			block = padded
		}
		if err := flashDataBlock(port, block, uint32(i)); err != nil {
			return errors.Annotatef(err, "block %d/%d", i, numBlocks)
		}
		job.ProgressB += uint64(end - start)
	}

	digest := md5.Sum(region.Data)
	return verifyDigest(port, region.Offset, uint32(len(region.Data)), digest)
}

func sync(port serial.Serial) error {
	cmd := espproto.EncodeCommand(espproto.OpSync, espproto.SyncPayload(), 0)
	for i := 0; i < syncRetries; i++ {
		if _, err := port.Write(cmd); err != nil {
			return &jobError{kind: FailureIO, err: err}
		}
		if resp, err := readFrame(port, syncReadTimeout); err == nil {
			if decoded, err := espproto.SlipDecode(resp); err == nil {
				if r, err := espproto.DecodeResponse(decoded); err == nil && r.Op == espproto.OpSync && r.Ok() {
					return nil
				}
			}
		}
		time.Sleep(syncRetryDelay)
	}
	return &jobError{kind: FailureProtocol, err: errors.New("no SYNC response")}
}

func changeBaud(port serial.Serial, newBaud uint) error {
	data := make([]byte, 8)
	putU32(data[0:4], uint32(newBaud))
	cmd := espproto.EncodeCommand(espproto.OpChangeBaud, data, espproto.Checksum(data))
	if _, err := port.Write(cmd); err != nil {
		return &jobError{kind: FailureIO, err: err}
	}
	return expectOk(port, espproto.OpChangeBaud, commandReadTimeout)
}

// uploadStub loads a stub's code and data segments into RAM via
// MEM_BEGIN/MEM_DATA/MEM_END, then issues a final MEM_END with the
// execute flag set and the stub's entry point, and waits for the
// 4-byte "OHAI" greeting the stub sends once it's running and ready
// to accept FLASH_* commands in place of the ROM loader.
func uploadStub(port serial.Serial, stub *StubImage) error {
	if err := uploadMemSegment(port, stub.Code, stub.CodeStart); err != nil {
		return errors.Annotate(err, "uploading stub code segment")
	}
	if len(stub.Data) > 0 {
		if err := uploadMemSegment(port, stub.Data, stub.DataStart); err != nil {
			return errors.Annotate(err, "uploading stub data segment")
		}
	}

	entry := make([]byte, 8)
	putU32(entry[0:4], 1) // execute
	putU32(entry[4:8], stub.Entry)
	if _, err := port.Write(espproto.EncodeCommand(espproto.OpMemEnd, entry, 0)); err != nil {
		return &jobError{kind: FailureIO, err: err}
	}
	greeting, err := readRaw(port, 4, commandReadTimeout)
	if err != nil {
		return &jobError{kind: FailureTimeout, err: errors.Annotate(err, "awaiting stub greeting")}
	}
	if string(greeting) != "OHAI" {
		return &jobError{kind: FailureProtocol, err: errors.Errorf("unexpected stub greeting %q", greeting)}
	}
	return nil
}

func uploadMemSegment(port serial.Serial, blob []byte, loadAddr uint32) error {
	const chunk = 0x1800
	numBlocks := (len(blob) + chunk - 1) / chunk
	if numBlocks == 0 {
		numBlocks = 1
	}
	begin := make([]byte, 16)
	putU32(begin[0:4], uint32(len(blob)))
	putU32(begin[4:8], uint32(numBlocks))
	putU32(begin[8:12], uint32(chunk))
	putU32(begin[12:16], loadAddr)
	if err := sendAndExpectOk(port, espproto.OpMemBegin, begin, 0, commandReadTimeout); err != nil {
		return err
	}
	for i := 0; i < numBlocks; i++ {
		start := i * chunk
		end := start + chunk
		if end > len(blob) {
			end = len(blob)
		}
		block := blob[start:end]
		data := make([]byte, 16+len(block))
		putU32(data[0:4], uint32(len(block)))
		putU32(data[4:8], uint32(i))
		putU32(data[8:12], 0)
		putU32(data[12:16], 0)
		copy(data[16:], block)
		if err := sendAndExpectOk(port, espproto.OpMemData, data, espproto.Checksum(block), commandReadTimeout); err != nil {
			return errors.Annotatef(err, "block %d/%d", i, numBlocks)
		}
	}
	return nil
}

// readRaw reads exactly n unframed bytes (used only for the stub's
// plaintext "OHAI" greeting, which is not SLIP-encoded).
func readRaw(port serial.Serial, n int, timeout time.Duration) ([]byte, error) {
	deadline := time.Now().Add(timeout)
	buf := make([]byte, 0, n)
	one := make([]byte, 1)
	for len(buf) < n && time.Now().Before(deadline) {
		k, err := port.Read(one)
		if err != nil {
			return nil, err
		}
		if k == 0 {
			continue
		}
		buf = append(buf, one[0])
	}
	if len(buf) < n {
		return nil, errors.New("timed out")
	}
	return buf, nil
}

func flashBegin(port serial.Serial, offset, size, blockSize, numBlocks uint32) error {
	data := make([]byte, 16)
	putU32(data[0:4], size)
	putU32(data[4:8], numBlocks)
	putU32(data[8:12], blockSize)
	putU32(data[12:16], offset)
	if _, err := port.Write(espproto.EncodeCommand(espproto.OpFlashBegin, data, 0)); err != nil {
		return &jobError{kind: FailureIO, err: err}
	}
	return expectOk(port, espproto.OpFlashBegin, commandReadTimeout)
}

func flashDataBlock(port serial.Serial, block []byte, seq uint32) error {
	data := make([]byte, 16+len(block))
	putU32(data[0:4], uint32(len(block)))
	putU32(data[4:8], seq)
	copy(data[16:], block)
	return sendAndExpectOk(port, espproto.OpFlashData, data, espproto.Checksum(block), perBlockTimeout)
}

func flashEnd(port serial.Serial, reboot bool) error {
	data := make([]byte, 4)
	if !reboot {
		data[0] = 1
	}
	if _, err := port.Write(espproto.EncodeCommand(espproto.OpFlashEnd, data, 0)); err != nil {
		return &jobError{kind: FailureIO, err: err}
	}
	return expectOk(port, espproto.OpFlashEnd, commandReadTimeout)
}

func verifyDigest(port serial.Serial, offset, size uint32, want [16]byte) error {
	data := make([]byte, 16)
	putU32(data[0:4], offset)
	putU32(data[4:8], size)
	putU32(data[8:12], 0)
	putU32(data[12:16], 0)
	if _, err := port.Write(espproto.EncodeCommand(espproto.OpFlashMD5, data, 0)); err != nil {
		return &jobError{kind: FailureIO, err: err}
	}
	resp, err := readFrame(port, commandReadTimeout)
	if err != nil {
		return &jobError{kind: FailureTimeout, err: err}
	}
	decoded, err := espproto.SlipDecode(resp)
	if err != nil {
		return &jobError{kind: FailureProtocol, err: err}
	}
	r, err := espproto.DecodeResponse(decoded)
	if err != nil || !r.Ok() {
		return &jobError{kind: FailureProtocol, err: errors.New("FLASH_MD5 command failed")}
	}
	// Stub returns the digest as a 32-char hex string in Body.
	if len(r.Body) < 32 {
		return &jobError{kind: FailureProtocol, err: errors.New("FLASH_MD5: short digest")}
	}
	gotHex := string(r.Body[:32])
	wantHex := hexEncode(want[:])
	if gotHex != wantHex {
		return &jobError{kind: FailureProtocol, err: errors.Errorf("digest mismatch @ 0x%x: got %s want %s", offset, gotHex, wantHex)}
	}
	return nil
}

func sendAndExpectOk(port serial.Serial, op byte, data []byte, checksum uint32, timeout time.Duration) error {
	if _, err := port.Write(espproto.EncodeCommand(op, data, checksum)); err != nil {
		return &jobError{kind: FailureIO, err: err}
	}
	return expectOk(port, op, timeout)
}

func expectOk(port serial.Serial, op byte, timeout time.Duration) error {
	resp, err := readFrame(port, timeout)
	if err != nil {
		return &jobError{kind: FailureTimeout, err: err}
	}
	decoded, err := espproto.SlipDecode(resp)
	if err != nil {
		return &jobError{kind: FailureProtocol, err: err}
	}
	r, err := espproto.DecodeResponse(decoded)
	if err != nil {
		return &jobError{kind: FailureProtocol, err: err}
	}
	if r.Op != op || !r.Ok() {
		return &jobError{kind: FailureProtocol, err: errors.Errorf("command 0x%02x failed", op)}
	}
	return nil
}

func readFrame(port serial.Serial, timeout time.Duration) ([]byte, error) {
	deadline := time.Now().Add(timeout)
	var out []byte
	started := false
	one := make([]byte, 1)
	for time.Now().Before(deadline) {
		n, err := port.Read(one)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			continue
		}
		b := one[0]
		if b == espproto.SlipEnd {
			out = append(out, b)
			if !started {
				started = true
				continue
			}
			if len(out) > 1 {
				return out, nil
			}
			continue
		}
		if started {
			out = append(out, b)
		}
	}
	return nil, errors.New("timed out waiting for response")
}

func putU32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

const hexDigits = "0123456789abcdef"

func hexEncode(b []byte) string {
	out := make([]byte, len(b)*2)
	for i, c := range b {
		out[i*2] = hexDigits[c>>4]
		out[i*2+1] = hexDigits[c&0xf]
	}
	return string(out)
}
