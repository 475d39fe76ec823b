package policies

import (
	"encoding/json"
	"os"
	"sort"
	"sync"
)

// QTable maps (state, action) to a value. Missing pairs read as the default,
// entries appear on first Set and are never removed.
type QTable struct {
	lock  *sync.RWMutex
	table map[string]map[string]float64
}

func NewQTable() *QTable {
	return &QTable{
		lock:  new(sync.RWMutex),
		table: make(map[string]map[string]float64),
	}
}

// Get the value of the pair, def when unseen. Reading never creates entries.
func (q *QTable) Get(state, action string, def float64) float64 {
	q.lock.RLock()
	defer q.lock.RUnlock()
	if val, ok := q.table[state][action]; ok {
		return val
	}
	return def
}

func (q *QTable) Set(state, action string, val float64) {
	q.lock.Lock()
	defer q.lock.Unlock()
	if _, ok := q.table[state]; !ok {
		q.table[state] = make(map[string]float64)
	}
	q.table[state][action] = val
}

// Max value recorded for the state across all its actions, def if none
func (q *QTable) Max(state string, def float64) (string, float64) {
	q.lock.RLock()
	defer q.lock.RUnlock()
	maxAction := ""
	maxVal := def
	first := true
	for a, val := range q.table[state] {
		if first || val > maxVal || (val == maxVal && a < maxAction) {
			maxAction = a
			maxVal = val
			first = false
		}
	}
	return maxAction, maxVal
}

// MaxAmong returns every action in actions attaining the highest value,
// unseen actions count as def
func (q *QTable) MaxAmong(state string, actions []string, def float64) ([]string, float64) {
	q.lock.RLock()
	defer q.lock.RUnlock()
	best := make([]string, 0, len(actions))
	maxVal := def
	for i, a := range actions {
		val, ok := q.table[state][a]
		if !ok {
			val = def
		}
		switch {
		case i == 0 || val > maxVal:
			maxVal = val
			best = append(best[:0], a)
		case val == maxVal:
			best = append(best, a)
		}
	}
	return best, maxVal
}

// States recorded in the table, sorted
func (q *QTable) States() []string {
	q.lock.RLock()
	defer q.lock.RUnlock()
	out := make([]string, 0, len(q.table))
	for s := range q.table {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Len is the number of (state, action) entries
func (q *QTable) Len() int {
	q.lock.RLock()
	defer q.lock.RUnlock()
	n := 0
	for _, actions := range q.table {
		n += len(actions)
	}
	return n
}

// Snapshot copies the table
func (q *QTable) Snapshot() map[string]map[string]float64 {
	q.lock.RLock()
	defer q.lock.RUnlock()
	out := make(map[string]map[string]float64, len(q.table))
	for s, actions := range q.table {
		out[s] = make(map[string]float64, len(actions))
		for a, v := range actions {
			out[s][a] = v
		}
	}
	return out
}

// Record dumps the table as json to the path
func (q *QTable) Record(path string) error {
	bs, err := json.Marshal(q.Snapshot())
	if err != nil {
		return err
	}
	return os.WriteFile(path+".json", bs, 0644)
}
