package queue

import (
	"sync"
	"testing"
)

// ===========================================================================
// Benchmark Configuration
// ===========================================================================

// queueBenchConfig holds benchmark test configuration.
type queueBenchConfig struct {
	name     string
	capacity int
}

// benchConfigs defines the data sizes for benchmarking.
var benchConfigs = []queueBenchConfig{
	{"Small/Cap64", 64},
	{"Medium/Cap1K", 1024},
	{"Large/Cap64K", 64 * 1024},
}

// ===========================================================================
// Queue Factory Registry
// ===========================================================================

// queueFactory creates a Queue[int] with the given capacity.
type queueFactory func(b *testing.B, capacity int) Queue[int]

// queueImplementations holds all registered queue implementations.
var queueImplementations = map[string]queueFactory{
	"Blocking": func(b *testing.B, capacity int) Queue[int] {
		q, err := NewBlocking[int](capacity)
		if err != nil {
			b.Fatal(err)
		}
		return q
	},
}

// ===========================================================================
// Single-Threaded Benchmarks
// ===========================================================================

// BenchmarkEnqueue measures Enqueue performance.
func BenchmarkEnqueue(b *testing.B) {
	for implName, factory := range queueImplementations {
		for _, cfg := range benchConfigs {
			b.Run(implName+"/"+cfg.name, func(b *testing.B) {
				q := factory(b, cfg.capacity)
				b.ResetTimer()
				b.ReportAllocs()
				for i := 0; i < b.N; i++ {
					q.Enqueue(i)
					// Drain before the queue would block
					if i%cfg.capacity == cfg.capacity-1 {
						b.StopTimer()
						for j := 0; j < cfg.capacity; j++ {
							q.Dequeue()
						}
						b.StartTimer()
					}
				}
			})
		}
	}
}

// BenchmarkDequeue measures Dequeue performance.
func BenchmarkDequeue(b *testing.B) {
	for implName, factory := range queueImplementations {
		for _, cfg := range benchConfigs {
			b.Run(implName+"/"+cfg.name, func(b *testing.B) {
				q := factory(b, cfg.capacity)
				b.ResetTimer()
				b.ReportAllocs()
				for i := 0; i < b.N; i++ {
					// Refill before the queue would block
					if i%cfg.capacity == 0 {
						b.StopTimer()
						for j := 0; j < cfg.capacity; j++ {
							q.Enqueue(j)
						}
						b.StartTimer()
					}
					q.Dequeue()
				}
			})
		}
	}
}

// BenchmarkEnqueueDequeue measures roundtrip Enqueue+Dequeue.
func BenchmarkEnqueueDequeue(b *testing.B) {
	for implName, factory := range queueImplementations {
		for _, cfg := range benchConfigs {
			b.Run(implName+"/"+cfg.name, func(b *testing.B) {
				q := factory(b, cfg.capacity)
				b.ResetTimer()
				b.ReportAllocs()
				for i := 0; i < b.N; i++ {
					q.Enqueue(i)
					q.Dequeue()
				}
			})
		}
	}
}

// ===========================================================================
// Concurrent Benchmarks
// ===========================================================================

// concurrencyConfigs defines producer/consumer count combinations.
var concurrencyConfigs = []struct {
	name      string
	producers int
	consumers int
}{
	{"1P1C", 1, 1},
	{"2P2C", 2, 2},
	{"4P4C", 4, 4},
	{"8P8C", 8, 8},
}

// BenchmarkConcurrent_EnqueueDequeue measures handoff throughput. Consumers
// exit when the queue is shut down and drained.
func BenchmarkConcurrent_EnqueueDequeue(b *testing.B) {
	const capacity = 1024
	const opsPerProducer = 10000

	for _, cc := range concurrencyConfigs {
		b.Run("Blocking/"+cc.name, func(b *testing.B) {
			for n := 0; n < b.N; n++ {
				q, err := NewBlocking[int](capacity)
				if err != nil {
					b.Fatal(err)
				}

				var producers, consumers sync.WaitGroup
				producers.Add(cc.producers)
				for p := 0; p < cc.producers; p++ {
					go func(id int) {
						defer producers.Done()
						for i := 0; i < opsPerProducer; i++ {
							q.Enqueue(id*opsPerProducer + i)
						}
					}(p)
				}

				consumers.Add(cc.consumers)
				for c := 0; c < cc.consumers; c++ {
					go func() {
						defer consumers.Done()
						for {
							if _, ok := q.Dequeue(); !ok {
								return
							}
						}
					}()
				}

				producers.Wait()
				q.Shutdown()
				consumers.Wait()
			}
		})
	}
}

// ===========================================================================
// Throughput Benchmark (items/second)
// ===========================================================================

// BenchmarkThroughput measures maximum single-threaded throughput.
func BenchmarkThroughput(b *testing.B) {
	const capacity = 1024

	for implName, factory := range queueImplementations {
		b.Run(implName, func(b *testing.B) {
			q := factory(b, capacity)
			b.ResetTimer()
			b.ReportAllocs()

			ops := 0
			for i := 0; i < b.N; i++ {
				for j := 0; j < capacity; j++ {
					q.Enqueue(j)
				}
				for j := 0; j < capacity; j++ {
					q.Dequeue()
				}
				ops += capacity * 2
			}
			b.ReportMetric(float64(ops)/b.Elapsed().Seconds(), "ops/s")
		})
	}
}
