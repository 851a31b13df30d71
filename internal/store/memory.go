package store

import "github.com/cwarden/monthcal/internal/calendar"

// Memory keeps snapshots in process. SaveErr, when set, makes every Save
// fail, which is handy for exercising unsaved-change handling.
type Memory struct {
	index   *calendar.Index
	SaveErr error
	Saves   int
}

func NewMemory(seed *calendar.Index) *Memory {
	m := &Memory{}
	if seed != nil {
		m.index = seed.Clone()
	}
	return m
}

func (m *Memory) Load() (*calendar.Index, error) {
	if m.index == nil {
		return nil, nil
	}
	return m.index.Clone(), nil
}

func (m *Memory) Save(index *calendar.Index) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.index = index.Clone()
	m.Saves++
	return nil
}
