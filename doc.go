/*
Package neuros provides building blocks to acquire and process biosignal
streams in real time.

Concept

This package offers an opinionated perspective to biosignal processing.
It's based on the idea that a processing session always has four stages:

    Source - the origin of the multichannel sample stream;
    Window - the accumulation of samples into fixed-length windows;
    Pipeline - the computation of derived values from every window;
    Sink - the destination of the per-window records.

It implies the following constraints:

    Source and Sink are mandatory;
    There might be 0 to n processors in the pipeline;
    Every processor observes the same window, not the output of its
    neighbours.

Components

Each stage is implemented by components. For example, board.Synthetic
generates a test signal shaped like an acquisition board, wav.Source
replays a recorded session and process.Alpha extracts alpha-band power.
Components are instantiated with constructor functions which validate the
configuration and pre-allocate all required structures. Invalid
configuration is reported synchronously as ConfigError, before any sample
is accepted.

Errors that happen per input travel differently: a sample with the wrong
number of channels is rejected with ChannelMismatchError and the stream
carries on, and a processor failing on one window is captured inside the
emitted record as ProcessingError while sibling processors and later
windows stay unaffected.

Composition

To process a stream, components are composed into a stream:

    src, err := board.NewSynthetic(2, 256)
    p, err := pipeline.New(alpha, stats)
    s, err := stream.New(src, p, sink, window.Config{Length: 256, Step: 128})

stream.New builds the window buffer for the source's channel geometry and
binds the pipeline to the sink through a bounded window queue.

Execution

Once the stream is built, it can be executed. To do that Run method should
be called:

    errc, err := s.Run(ctx)
    for err := range errc {
        ...
    }

Run starts and asynchronously executes all components until either the
source is exhausted, the context is done or an error in any of the
components occurred.
*/
package neuros
