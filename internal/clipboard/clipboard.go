// Package clipboard reads and writes the system clipboard.
package clipboard

import (
	"fmt"
	"sync"

	"github.com/atotto/clipboard"

	"github.com/iconidentify/tikgrab/internal/domain"
)

// Writer places text on a clipboard.
type Writer interface {
	WriteAll(text string) error
}

// Reader returns the text currently on a clipboard.
type Reader interface {
	ReadAll() (string, error)
}

// System uses the operating system clipboard.
type System struct{}

// WriteAll implements Writer.
func (System) WriteAll(text string) error {
	if clipboard.Unsupported {
		return domain.ErrClipboardUnavailable
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrClipboardUnavailable, err)
	}
	return nil
}

// ReadAll implements Reader.
func (System) ReadAll() (string, error) {
	if clipboard.Unsupported {
		return "", domain.ErrClipboardUnavailable
	}
	text, err := clipboard.ReadAll()
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrClipboardUnavailable, err)
	}
	return text, nil
}

// Memory is an in-process clipboard for headless use.
type Memory struct {
	mu   sync.Mutex
	text string
}

// WriteAll implements Writer.
func (m *Memory) WriteAll(text string) error {
	m.mu.Lock()
	m.text = text
	m.mu.Unlock()
	return nil
}

// ReadAll implements Reader.
func (m *Memory) ReadAll() (string, error) {
	return m.Text(), nil
}

// Text returns the last written text.
func (m *Memory) Text() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text
}
