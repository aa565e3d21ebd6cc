// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stackedmap

// MapGetter defines getter method of map.
type MapGetter func(key interface{}) (value interface{}, exist bool)

type entry struct {
	key   interface{}
	value interface{}
}

// StackedMap maintains maps in a stack.
// Each map inherits key/value of map that is at lower level.
// It acts as a map with save-restore/snapshot-revert manner.
type StackedMap struct {
	src     MapGetter
	entries []entry
	// start offset in entries of each level, marks[0] is the base level
	marks []int
	// entry indices of each key, latest last
	keyRevs map[interface{}][]int
}

// New create an instance of StackedMap.
// src acts as source of data.
func New(src MapGetter) *StackedMap {
	return &StackedMap{
		src:     src,
		marks:   []int{0},
		keyRevs: make(map[interface{}][]int),
	}
}

// Depth returns depth of stack.
func (sm *StackedMap) Depth() int {
	return len(sm.marks)
}

// Push pushes a new map on stack.
// It returns the depth before push, which can be passed to PopTo.
func (sm *StackedMap) Push() int {
	sm.marks = append(sm.marks, len(sm.entries))
	return len(sm.marks) - 1
}

// Pop pops the map at top of stack.
// It will revert all Put operations since last Push.
func (sm *StackedMap) Pop() {
	if len(sm.marks) <= 1 {
		panic("stack map: nothing to pop")
	}
	top := len(sm.marks) - 1
	start := sm.marks[top]
	for i := len(sm.entries) - 1; i >= start; i-- {
		key := sm.entries[i].key
		revs := sm.keyRevs[key]
		if len(revs) <= 1 {
			delete(sm.keyRevs, key)
		} else {
			sm.keyRevs[key] = revs[:len(revs)-1]
		}
	}
	sm.entries = sm.entries[:start]
	sm.marks = sm.marks[:top]
}

// PopTo pops maps until stack depth reaches depth.
func (sm *StackedMap) PopTo(depth int) {
	if depth < 1 {
		depth = 1
	}
	for len(sm.marks) > depth {
		sm.Pop()
	}
}

// Get gets value for given key.
// The second return value indicates whether the given key is found.
func (sm *StackedMap) Get(key interface{}) (interface{}, bool) {
	if revs, ok := sm.keyRevs[key]; ok {
		return sm.entries[revs[len(revs)-1]].value, true
	}
	if sm.src != nil {
		return sm.src(key)
	}
	return nil, false
}

// Put puts key value into map at stack top.
func (sm *StackedMap) Put(key, value interface{}) {
	sm.keyRevs[key] = append(sm.keyRevs[key], len(sm.entries))
	sm.entries = append(sm.entries, entry{key, value})
}

// Journal traverse journal entries of all Put operations.
// If callback returns false, traversal will be aborted.
func (sm *StackedMap) Journal(cb func(key, value interface{}) bool) {
	for _, e := range sm.entries {
		if !cb(e.key, e.value) {
			return
		}
	}
}
