package metric

import (
	"container/list"
	"expvar"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPushTrimsHistory(t *testing.T) {
	history := list.New()
	v := new(expvar.Int)
	var got string
	for i := 0; i < historyLen+10; i++ {
		v.Set(int64(i))
		got = Push(history, v)
	}
	parts := strings.Split(got, ",")
	assert.Len(t, parts, historyLen)
	assert.Equal(t, "10", parts[0])
	assert.Equal(t, strconv.Itoa(historyLen+9), parts[len(parts)-1])
}

func TestJoinEmpty(t *testing.T) {
	assert.Equal(t, "", joinStringList(list.New()))
}

func TestCounter(t *testing.T) {
	m := new(expvar.Map).Init()
	c := NewCounter(m, "Saves")
	c.Add(2)
	c.Add(1)
	assert.Equal(t, int64(3), c.Value())
	assert.Equal(t, "3", m.Get("SavesTotal").String())

	c.sample()
	c.Add(1)
	c.sample()
	assert.Equal(t, "3,4", c.History())
	assert.Equal(t, `"3,4"`, m.Get("SavesHist").String())
}
