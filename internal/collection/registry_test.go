package collection

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/reqtree/internal/request"
)

func TestRegistryConcurrentReadersDoNotBlock(t *testing.T) {
	reg := NewRegistry()
	id := reg.Insert(request.NewRequest("shared"))

	entered := make(chan struct{}, 2)
	release := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = reg.Read(id, func(request.Request) {
				entered <- struct{}{}
				<-release
			})
		}()
	}

	for i := 0; i < 2; i++ {
		select {
		case <-entered:
		case <-time.After(2 * time.Second):
			t.Fatalf("reader %d blocked behind another reader", i+1)
		}
	}
	close(release)
	wg.Wait()
}

func TestRegistryWriterExcludesReadersAndWriters(t *testing.T) {
	reg := NewRegistry()
	id := reg.Insert(request.NewRequest("shared"))

	var active, writers, violations int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = reg.Write(id, func(r *request.Request) {
				if atomic.AddInt32(&writers, 1) != 1 || atomic.LoadInt32(&active) != 0 {
					atomic.AddInt32(&violations, 1)
				}
				r.Name += "x"
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&writers, -1)
			})
		}()
		go func() {
			defer wg.Done()
			_ = reg.Read(id, func(request.Request) {
				atomic.AddInt32(&active, 1)
				if atomic.LoadInt32(&writers) != 0 {
					atomic.AddInt32(&violations, 1)
				}
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&active, -1)
			})
		}()
	}
	wg.Wait()

	require.Zero(t, atomic.LoadInt32(&violations))
	snap, err := reg.Snapshot(id)
	require.NoError(t, err)
	require.Equal(t, "shared"+"xxxxxxxxxxxxxxxx", snap.Name)
}

func TestRegistryStaleHandles(t *testing.T) {
	reg := NewRegistry()
	first := reg.Insert(request.NewRequest("first"))
	require.NoError(t, reg.Remove(first))
	require.ErrorIs(t, reg.Remove(first), ErrStaleRecord)

	second := reg.Insert(request.NewRequest("second"))
	require.Equal(t, first.slot, second.slot, "slot should be recycled")
	require.NotEqual(t, first.gen, second.gen)

	err := reg.Read(first, func(request.Request) {
		t.Fatalf("stale handle must not reach the record")
	})
	require.ErrorIs(t, err, ErrStaleRecord)
	require.ErrorIs(t, reg.Write(RecordID{}, func(*request.Request) {}), ErrStaleRecord)
	require.Equal(t, 1, reg.Len())
}

func TestRegistryInsertCopiesInput(t *testing.T) {
	reg := NewRegistry()
	req := request.NewRequest("r")
	req.Headers = append(req.Headers, request.Pair("A", "1"))
	id := reg.Insert(req)
	req.Headers[0].Value = "changed"

	snap, err := reg.Snapshot(id)
	require.NoError(t, err)
	require.Equal(t, "1", snap.Headers[0].Value)
}
