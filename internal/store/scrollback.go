package store

import "github.com/MKhiriev/go-chat-tui/models"

// DefaultScrollbackCapacity is used when a non-positive capacity is requested.
const DefaultScrollbackCapacity = 1000

// Scrollback is a capacity-bounded, append-only log of chat lines kept in a
// ring. When full, appending evicts the oldest line. Positions passed to View
// are offsets from the newest line, so eviction never leaves a dangling
// reference.
//
// Scrollback is not safe for concurrent use; it is owned by the single
// goroutine that applies interaction events.
type Scrollback struct {
	lines    []models.ChatLine
	head     int
	size     int
	capacity int
}

// NewScrollback returns an empty Scrollback retaining at most capacity lines.
func NewScrollback(capacity int) *Scrollback {
	if capacity <= 0 {
		capacity = DefaultScrollbackCapacity
	}
	return &Scrollback{capacity: capacity}
}

// Append adds line as the newest entry and reports whether the oldest entry
// was evicted to make room.
func (s *Scrollback) Append(line models.ChatLine) (evicted bool) {
	if len(s.lines) < s.capacity {
		s.lines = append(s.lines, line)
		s.size++
		return false
	}

	// ring is full: overwrite the oldest slot and advance head
	s.lines[s.head] = line
	s.head = (s.head + 1) % s.capacity
	return true
}

// TotalLines returns the number of retained lines.
func (s *Scrollback) TotalLines() int {
	return s.size
}

// Capacity returns the maximum number of retained lines.
func (s *Scrollback) Capacity() int {
	return s.capacity
}

// At returns the i-th retained line counting from the oldest.
func (s *Scrollback) At(i int) models.ChatLine {
	return s.lines[(s.head+i)%len(s.lines)]
}

// View returns the lines visible in a window of height lines whose bottom is
// position lines above the newest line. Out-of-range input is clamped; the
// result never holds more than height lines and View never mutates s.
func (s *Scrollback) View(position, height int) []models.ChatLine {
	return s.Window(position, height, nil).Lines
}

// RowCounter reports how many screen rows a line occupies. Results below 1
// are treated as 1.
type RowCounter func(line models.ChatLine) int

// Window is the part of the scrollback that fills a viewport measured in
// rows.
type Window struct {
	// Lines overlap the viewport, oldest first. The first and last line may
	// be cut by the viewport edges.
	Lines []models.ChatLine
	// Below is the number of rows of the last line that lie under the
	// viewport.
	Below int
	// Newer is the number of lines entirely under the viewport.
	Newer int
}

// Window returns the lines visible in a viewport of height rows whose bottom
// is position rows above the last row of the newest line. A nil rows counts
// one row per line, which makes Window agree with View. position is clamped
// the same way as ClampPosition clamps it against TotalRows.
func (s *Scrollback) Window(position, height int, rows RowCounter) Window {
	if height <= 0 || s.size == 0 {
		return Window{}
	}

	position = ClampPosition(position, s.TotalRows(rows), height)

	var (
		w       Window
		skipped int
		covered int
		i       = s.size - 1
	)
	for ; i >= 0; i-- {
		n := rowsOf(s.At(i), rows)
		if skipped+n > position {
			w.Below = position - skipped
			break
		}
		skipped += n
		w.Newer++
	}

	first := i
	for ; first >= 0 && covered < height+w.Below; first-- {
		covered += rowsOf(s.At(first), rows)
	}

	w.Lines = make([]models.ChatLine, 0, i-first)
	for j := first + 1; j <= i; j++ {
		w.Lines = append(w.Lines, s.At(j))
	}
	return w
}

// TotalRows is the number of rows all retained lines occupy. A nil rows
// counts one row per line.
func (s *Scrollback) TotalRows(rows RowCounter) int {
	if rows == nil {
		return s.size
	}
	total := 0
	for i := 0; i < s.size; i++ {
		total += rowsOf(s.At(i), rows)
	}
	return total
}

func rowsOf(line models.ChatLine, rows RowCounter) int {
	if rows == nil {
		return 1
	}
	return max(1, rows(line))
}

// MaxPosition is the largest valid scroll position for total lines shown in
// a viewport of height lines.
func MaxPosition(total, height int) int {
	return max(0, total-max(0, height))
}

// ClampPosition clamps position into [0, MaxPosition(total, height)].
func ClampPosition(position, total, height int) int {
	return min(max(0, position), MaxPosition(total, height))
}
