// Package maskedit implements the object-removal mask editor: a
// display-resolution binary raster painted with a circular brush, with
// bounded linear undo/redo and export at the source image's resolution.
package maskedit

import (
	"fmt"
	"image"
)

// HistoryCap bounds the undo history. Exceeding it evicts the oldest
// snapshot; the live entry is always preserved.
const HistoryCap = 50

const (
	keep   = 0x00
	remove = 0xFF
)

// Point is a position on the display canvas, in display pixels
type Point struct {
	X int
	Y int
}

// Editor owns the mask raster for one editing sitting. The raster always
// has exactly the display dimensions; only ExportMaskAtSourceResolution
// crosses the component boundary.
type Editor struct {
	srcW, srcH int
	w, h       int

	mask []byte // w*h, keep or remove per pixel

	// Linear undo history. history[histIdx] always equals the current
	// mask; entries are owned copies, never aliases of the live raster.
	history  [][]byte
	histIdx  int
	stroking bool
	dirty    bool // painted since the stroke began
}

// NewEditor creates an editor for a source image of srcW x srcH pixels,
// displayed inside a maxW x maxH container. The display surface is scaled
// to fit, never upscaled beyond native resolution.
func NewEditor(srcW, srcH, maxW, maxH int) (*Editor, error) {
	if srcW <= 0 || srcH <= 0 {
		return nil, fmt.Errorf("invalid source dimensions %dx%d", srcW, srcH)
	}
	if maxW <= 0 || maxH <= 0 {
		return nil, fmt.Errorf("invalid container dimensions %dx%d", maxW, maxH)
	}

	scale := 1.0
	if s := float64(maxW) / float64(srcW); s < scale {
		scale = s
	}
	if s := float64(maxH) / float64(srcH); s < scale {
		scale = s
	}

	w := int(float64(srcW) * scale)
	h := int(float64(srcH) * scale)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	e := &Editor{
		srcW: srcW,
		srcH: srcH,
		w:    w,
		h:    h,
		mask: make([]byte, w*h),
	}
	// Seed history with the empty raster so the first stroke is undoable
	e.history = [][]byte{e.snapshot()}
	return e, nil
}

// DisplaySize returns the working surface dimensions in display pixels
func (e *Editor) DisplaySize() (w, h int) {
	return e.w, e.h
}

// SourceSize returns the source image dimensions
func (e *Editor) SourceSize() (w, h int) {
	return e.srcW, e.srcH
}

// BeginStroke starts a paint stroke. Paint calls between BeginStroke and
// EndStroke are coalesced into a single history entry.
func (e *Editor) BeginStroke() {
	e.stroking = true
	e.dirty = false
}

// EndStroke completes a stroke and, if anything was painted, pushes a
// snapshot onto the history
func (e *Editor) EndStroke() {
	if e.stroking && e.dirty {
		e.pushHistory()
	}
	e.stroking = false
	e.dirty = false
}

// Paint draws a filled circle of the given diameter centered at p.
// erase=false marks pixels for removal; erase=true restores them to keep
// (un-marking, not undo). Outside a BeginStroke/EndStroke pair the call is
// treated as a single-point stroke.
func (e *Editor) Paint(p Point, diameter int, erase bool) {
	if diameter < 1 {
		diameter = 1
	}
	tap := !e.stroking
	if tap {
		e.BeginStroke()
	}

	color := byte(remove)
	if erase {
		color = keep
	}

	r := float64(diameter) / 2
	ri := int(r + 0.5)
	for dy := -ri; dy <= ri; dy++ {
		for dx := -ri; dx <= ri; dx++ {
			if float64(dx*dx+dy*dy) > r*r {
				continue
			}
			x, y := p.X+dx, p.Y+dy
			if x < 0 || x >= e.w || y < 0 || y >= e.h {
				continue
			}
			idx := y*e.w + x
			if e.mask[idx] != color {
				e.mask[idx] = color
				e.dirty = true
			}
		}
	}

	if tap {
		e.EndStroke()
	}
}

// Clear resets the whole mask to keep. A no-op on an already empty mask;
// otherwise it is recorded as one history entry.
func (e *Editor) Clear() {
	if !e.HasNonEmptyMask() {
		return
	}
	for i := range e.mask {
		e.mask[i] = keep
	}
	e.pushHistory()
}

// CanUndo reports whether an earlier snapshot exists
func (e *Editor) CanUndo() bool {
	return e.histIdx > 0
}

// CanRedo reports whether a later snapshot exists
func (e *Editor) CanRedo() bool {
	return e.histIdx < len(e.history)-1
}

// Undo restores the previous snapshot. No-op at the history boundary.
func (e *Editor) Undo() {
	if !e.CanUndo() {
		return
	}
	e.histIdx--
	e.restore(e.history[e.histIdx])
}

// Redo restores the next snapshot. No-op at the history boundary.
func (e *Editor) Redo() {
	if !e.CanRedo() {
		return
	}
	e.histIdx++
	e.restore(e.history[e.histIdx])
}

// HasNonEmptyMask reports whether any pixel is marked for removal
func (e *Editor) HasNonEmptyMask() bool {
	for _, b := range e.mask {
		if b == remove {
			return true
		}
	}
	return false
}

// ExportMaskAtSourceResolution resamples the display raster up to the
// source image's pixel dimensions with nearest-neighbor sampling, so the
// exported mask stays strictly binary (0x00 keep / 0xFF remove). Does not
// mutate editor state and may be called at any time.
func (e *Editor) ExportMaskAtSourceResolution() *image.Gray {
	out := image.NewGray(image.Rect(0, 0, e.srcW, e.srcH))
	for y := 0; y < e.srcH; y++ {
		sy := y * e.h / e.srcH
		row := sy * e.w
		dst := y * out.Stride
		for x := 0; x < e.srcW; x++ {
			sx := x * e.w / e.srcW
			out.Pix[dst+x] = e.mask[row+sx]
		}
	}
	return out
}

// MaskAt reports whether the display pixel at (x, y) is marked for removal
func (e *Editor) MaskAt(x, y int) bool {
	if x < 0 || x >= e.w || y < 0 || y >= e.h {
		return false
	}
	return e.mask[y*e.w+x] == remove
}

func (e *Editor) snapshot() []byte {
	s := make([]byte, len(e.mask))
	copy(s, e.mask)
	return s
}

func (e *Editor) restore(s []byte) {
	copy(e.mask, s)
}

// pushHistory appends the current raster after the live index, discarding
// any redo tail (classic linear undo) and evicting the oldest entry once
// the capacity is exceeded
func (e *Editor) pushHistory() {
	e.history = append(e.history[:e.histIdx+1], e.snapshot())
	e.histIdx++

	if len(e.history) > HistoryCap {
		over := len(e.history) - HistoryCap
		e.history = append([][]byte{}, e.history[over:]...)
		e.histIdx -= over
	}
}
