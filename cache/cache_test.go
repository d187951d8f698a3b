package cache_test

import (
	"reflect"
	"testing"

	"github.com/jlaakso/scoreblock"
	"github.com/jlaakso/scoreblock/cache"
)

func TestRoundTrip(t *testing.T) {
	d := cache.New(t.TempDir())
	tune := scoreblock.Tune{
		Title: "Test",
		BPM:   90,
		Notes: []scoreblock.Note{{Pitch: 60, Start: 0, Duration: 1}, {Rest: true, Start: 1, Duration: 0.5}},
	}
	key := cache.Key("X:1\nC z")
	if _, ok := d.Get(key); ok {
		t.Fatal("unexpected hit on an empty cache")
	}
	d.Put(key, tune)
	got, ok := d.Get(key)
	if !ok {
		t.Fatal("cache miss after Put")
	}
	if !reflect.DeepEqual(got, tune) {
		t.Errorf("got %+v, want %+v", got, tune)
	}
}

func TestKeyIsStable(t *testing.T) {
	if cache.Key("abc") != cache.Key("abc") {
		t.Error("same source must give the same key")
	}
	if cache.Key("abc") == cache.Key("abd") {
		t.Error("different sources must give different keys")
	}
}

func TestDisabledCache(t *testing.T) {
	d := cache.New("")
	d.Put("k", scoreblock.Tune{Title: "x"})
	if _, ok := d.Get("k"); ok {
		t.Error("disabled cache must always miss")
	}
}
