// Package core is the scheduler at the center of an atmo application.
//
// A Runtime owns three bounded queues:
//   - ability executions: (ability ID, value) pairs handed to a Dispatcher
//   - callback executions: (callback, value) pairs
//   - tick callbacks: standing subscriptions invoked on every Tick
//
// Producers (sensor goroutines, timers, handlers running inside Tick) call
// AddAbilityExecute and AddCallbackExecute. Both deep-copy the value and
// either enqueue it in O(1) or fail immediately with a CapacityError; they
// never block and never evict.
//
// Tick is the only consumer. It runs every tick callback, drains the
// callback queue, then runs abilities one at a time, draining the callback
// queue again after each ability so callbacks enqueued by ability A run
// before ability B starts.
//
// Thread-safety model:
//   - Add*: safe from any goroutine, including handlers running inside Tick
//   - Tick, Run, DelayNonBlocking: one goroutine at a time
//
// The queue lock is the Platform's Lock/Unlock. It is held only around
// push and pop, never across a handler.
package core
