/*
Package leansdr provides a small dataflow engine for software-defined-radio
transmit chains.

Concept

A chain is built from three kinds of objects:

	Buffer - a fixed-capacity, single-producer/single-consumer store of a
	         uniform element type;
	Stage - a unit of work that reads from and writes to buffers;
	Scheduler - the owner of buffers and stages, driving the chain.

Stages never run concurrently. The scheduler repeatedly scans its stages in
registration order and executes each one; a stage that cannot make progress
returns without side effects. When a full scan moves no data through any
buffer, the chain is drained and the scheduler stops.

Contracts

Buffers expose explicit Readable and Writable counts. A stage consumes input
by advancing the read cursor with Read and publishes output by committing
the written count with Written; the commit is the only point at which data
becomes visible downstream. Exceeding either count is a programming error
and panics: it means a stage miscomputed its own rate relationship, and
there is no meaningful way to recover.

Backpressure is the Writable count shrinking to zero. There is no unbounded
queueing and no blocking between stages; a starved or congested stage simply
reports zero progress for the round.

Subpackages implement the DVB-S modulation stages (dvb, dsp, sdr) and the
pipeline assembly (tx).
*/
package leansdr
