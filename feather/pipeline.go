package feather

import "sync"

// task runs fn over data split in contiguous chunks, one goroutine per worker
func task[T any](workersCount int, data []T, fn func(data T)) {
	if workersCount <= 1 || len(data) < 2 {
		for _, d := range data {
			fn(d)
		}
		return
	}

	var wg sync.WaitGroup
	dataSize := len(data)
	chunkSize := (dataSize + workersCount - 1) / workersCount

	for start := 0; start < dataSize; start += chunkSize {
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				fn(data[i])
			}
		}(start, min(start+chunkSize, dataSize))
	}
	wg.Wait()
}

// taskIndexed is task for work that writes into a slot per index
func taskIndexed(workersCount, size int, fn func(i int)) {
	if workersCount <= 1 || size < 2 {
		for i := 0; i < size; i++ {
			fn(i)
		}
		return
	}

	var wg sync.WaitGroup
	chunkSize := (size + workersCount - 1) / workersCount

	for start := 0; start < size; start += chunkSize {
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				fn(i)
			}
		}(start, min(start+chunkSize, size))
	}
	wg.Wait()
}
