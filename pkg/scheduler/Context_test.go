package scheduler

import "sync"
import "testing"
import "time"

import "github.com/stretchr/testify/assert"
import "github.com/stretchr/testify/require"

func TestSubmitRunsJobsInOrder(t *testing.T) {
	ctx := NewContext("test")
	defer ctx.Stop()

	var mutex sync.Mutex
	var order []int

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		i := i
		ctx.Submit(func() {
			mutex.Lock()
			order = append(order, i)
			mutex.Unlock()
			wg.Done()
		})
	}

	wg.Wait()
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestCallBlocksUntilJobCompletes(t *testing.T) {
	ctx := NewContext("test")
	defer ctx.Stop()

	var ran bool
	ctx.Call(func() { ran = true })

	assert.True(t, ran)
}

func TestHopRunsNextOnOtherContext(t *testing.T) {
	a := NewContext("a")
	b := NewContext("b")
	defer a.Stop()
	defer b.Stop()

	done := make(chan struct{})

	a.Hop(b, func() {}, func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Hop's next job never ran on the other context")
	}
}

func TestPeriodicTimerFiresRepeatedly(t *testing.T) {
	ctx := NewContext("test")
	defer ctx.Stop()

	var mutex sync.Mutex
	count := 0

	timer := NewPeriodicTimer(ctx, 5*time.Millisecond)
	timer.Start(func() {
		mutex.Lock()
		count++
		mutex.Unlock()
	})
	defer timer.Stop()

	require.Eventually(t, func() bool {
		mutex.Lock()
		defer mutex.Unlock()
		return count >= 3
	}, time.Second, 5*time.Millisecond)
}

func TestJitteredStaysWithinTwentyPercent(t *testing.T) {
	base := 100 * time.Millisecond
	for i := 0; i < 50; i++ {
		got := Jittered(base)
		assert.GreaterOrEqual(t, got, 80*time.Millisecond)
		assert.LessOrEqual(t, got, 120*time.Millisecond)
	}
}
