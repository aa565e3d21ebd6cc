// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stackedmap_test

import (
	"testing"

	"github.com/meterio/sealed-auction/stackedmap"
	"github.com/stretchr/testify/assert"
)

func M(a ...interface{}) []interface{} {
	return a
}

func TestStackedMap(t *testing.T) {
	src := make(map[string]string)
	src["foo"] = "bar"

	sm := stackedmap.New(func(key interface{}) (interface{}, bool) {
		v, r := src[key.(string)]
		return v, r
	})

	tests := []struct {
		f          func()
		depth      int
		putKey     string
		putValue   string
		getKey     string
		getReturns []interface{}
	}{
		{func() {}, 1, "", "", "foo", M("bar", true)},
		{func() { sm.Push() }, 2, "foo", "baz", "foo", M("baz", true)},
		{func() {}, 2, "foo", "qux", "foo", M("qux", true)},
		{func() { sm.Push() }, 3, "foo", "quux", "foo", M("quux", true)},
		{func() { sm.Pop() }, 2, "", "", "foo", M("qux", true)},
		{func() { sm.Pop() }, 1, "", "", "foo", M("bar", true)},
		{func() { sm.Push(); sm.Push() }, 3, "new", "v", "new", M("v", true)},
		{func() { sm.PopTo(1) }, 1, "", "", "new", M("", false)},
	}

	for _, test := range tests {
		test.f()
		assert.Equal(t, test.depth, sm.Depth())
		if test.putKey != "" {
			sm.Put(test.putKey, test.putValue)
		}
		v, ok := sm.Get(test.getKey)
		if !ok {
			v = ""
		}
		assert.Equal(t, test.getReturns, M(v, ok))
	}
}

func TestStackedMapJournal(t *testing.T) {
	sm := stackedmap.New(nil)
	rev := sm.Push()
	sm.Put("a", 1)
	sm.Put("b", 2)
	sm.Put("a", 3)

	var keys []interface{}
	var values []interface{}
	sm.Journal(func(k, v interface{}) bool {
		keys = append(keys, k)
		values = append(values, v)
		return true
	})
	assert.Equal(t, M("a", "b", "a"), keys)
	assert.Equal(t, M(1, 2, 3), values)

	sm.PopTo(rev)
	count := 0
	sm.Journal(func(k, v interface{}) bool {
		count++
		return true
	})
	assert.Equal(t, 0, count)
}
