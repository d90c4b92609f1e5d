package queue

// Option applies a configuration option to the ShardedQueue.
type Option func(*ShardedQueue)

// WithCapacity sets the total capacity, split evenly across shards.
func WithCapacity(capacity int) Option {
	return func(q *ShardedQueue) {
		if capacity > 0 {
			q.capacity = capacity
		}
	}
}

// WithShards sets the number of shards.
func WithShards(n int) Option {
	return func(q *ShardedQueue) {
		if n > 0 {
			q.shards = n
		}
	}
}
