// Package inference - Inference sessions.
package inference

import (
	"os"
	"sync"

	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"

	"github.com/nvr-ai/go-lidar/inference/providers"
)

// Runner is the minimal execution contract the detection pipeline depends
// on. A Runner accepts named input tensors matching its signature and
// returns the named outputs of one inference pass. Run blocks until the
// backend has fully resolved.
//
// A Runner permits at most one in-flight Run unless the concrete
// implementation documents otherwise; *Session serializes internally.
type Runner interface {
	Run(inputs []Value) ([]Value, error)
	Signature() *Signature
	Close() error
}

var environmentOnce sync.Once

// Session wraps one loaded model artifact on one execution backend. It is
// expensive to construct (model load and graph compile) and cheap to call.
// The session owns every backend-native resource it allocates and releases
// them on Close.
type Session struct {
	backend   providers.ProviderBackend
	signature Signature
	session   *ort.AdvancedSession

	// Pre-bound fixed-shape tensors, in signature order. The float/int maps
	// expose each tensor's backing buffer for copy-in/copy-out.
	inputTensors  []ort.Value
	outputTensors []ort.Value
	floatBuffers  map[string][]float32
	intBuffers    map[string][]int32

	mu     sync.Mutex
	closed bool
}

// Open loads a model artifact and binds fixed-shape input/output tensors
// per its declared signature.
//
// Order of operations:
//  1. Library path check: ensures the native runtime is accessible.
//  2. Environment setup: prepares the runtime internals, once per process.
//  3. Tensor allocation: fixed-shape buffers for every declared tensor.
//  4. Session options: threading, graph optimization, execution provider.
//  5. Session creation: loads the model and binds the tensors.
//
// Every failure path destroys the tensors allocated so far; a nil error
// means the caller owns the session and must Close it.
//
// Arguments:
//   - modelPath: Path to the compiled model artifact.
//   - signature: The artifact's declared input/output tensor contract.
//   - provider: The execution provider to run on.
//
// Returns:
//   - *Session: The runnable session.
//   - error: A backend-tagged *Error if loading fails.
func Open(modelPath string, signature Signature, provider providers.ExecutionProvider) (*Session, error) {
	backend := string(provider.Backend())

	if err := signature.Validate(); err != nil {
		return nil, newError(backend, "load", err)
	}
	if _, err := os.Stat(modelPath); err != nil {
		return nil, newError(backend, "load", errors.Wrapf(err, "model artifact %s", modelPath))
	}

	libPath := providers.GetSharedLibPath()
	if _, err := os.Stat(libPath); os.IsNotExist(err) {
		return nil, newError(backend, "load",
			errors.Errorf("runtime shared library not found at %s (set %s)", libPath, providers.SharedLibEnvVar))
	}

	var envErr error
	environmentOnce.Do(func() {
		ort.SetSharedLibraryPath(libPath)
		envErr = ort.InitializeEnvironment()
	})
	if envErr != nil {
		return nil, newError(backend, "load", errors.Wrap(envErr, "initializing runtime environment"))
	}

	s := &Session{
		backend:      provider.Backend(),
		signature:    signature,
		floatBuffers: make(map[string][]float32),
		intBuffers:   make(map[string][]int32),
	}

	destroyAll := func() {
		for _, t := range s.inputTensors {
			t.Destroy()
		}
		for _, t := range s.outputTensors {
			t.Destroy()
		}
	}

	inputNames := make([]string, 0, len(signature.Inputs))
	for _, spec := range signature.Inputs {
		t, err := s.allocate(spec)
		if err != nil {
			destroyAll()
			return nil, newError(backend, "load", err)
		}
		s.inputTensors = append(s.inputTensors, t)
		inputNames = append(inputNames, spec.Name)
	}

	outputNames := make([]string, 0, len(signature.Outputs))
	for _, spec := range signature.Outputs {
		t, err := s.allocate(spec)
		if err != nil {
			destroyAll()
			return nil, newError(backend, "load", err)
		}
		s.outputTensors = append(s.outputTensors, t)
		outputNames = append(outputNames, spec.Name)
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		destroyAll()
		return nil, newError(backend, "load", errors.Wrap(err, "creating session options"))
	}
	defer options.Destroy()

	// Graph optimizations fuse operations and remove redundancies during
	// graph loading.
	if err := options.SetGraphOptimizationLevel(ort.GraphOptimizationLevelEnableExtended); err != nil {
		destroyAll()
		return nil, newError(backend, "load", errors.Wrap(err, "setting graph optimization level"))
	}

	if err := provider.Apply(options); err != nil {
		destroyAll()
		return nil, newError(backend, "load", errors.Wrapf(err, "enabling %s execution provider", backend))
	}

	session, err := ort.NewAdvancedSession(
		modelPath,
		inputNames,
		outputNames,
		s.inputTensors,
		s.outputTensors,
		options,
	)
	if err != nil {
		destroyAll()
		return nil, newError(backend, "load", errors.Wrap(err, "creating runtime session"))
	}
	s.session = session

	return s, nil
}

// allocate creates one empty fixed-shape tensor for a spec and records its
// backing buffer under the spec's name.
func (s *Session) allocate(spec ValueSpec) (ort.Value, error) {
	shape := ort.NewShape(spec.Shape...)
	switch spec.DType {
	case Int32:
		t, err := ort.NewEmptyTensor[int32](shape)
		if err != nil {
			return nil, errors.Wrapf(err, "allocating tensor %q", spec.Name)
		}
		s.intBuffers[spec.Name] = t.GetData()
		return t, nil
	default:
		t, err := ort.NewEmptyTensor[float32](shape)
		if err != nil {
			return nil, errors.Wrapf(err, "allocating tensor %q", spec.Name)
		}
		s.floatBuffers[spec.Name] = t.GetData()
		return t, nil
	}
}

// Backend returns the execution backend this session runs on.
func (s *Session) Backend() providers.ProviderBackend {
	return s.backend
}

// Signature returns the artifact's declared tensor contract.
func (s *Session) Signature() *Signature {
	return &s.signature
}

// Run executes one blocking inference pass.
//
// Inputs are validated against the signature, copied into the pre-bound
// tensors, and the outputs are copied back out, so the returned values stay
// valid after the next Run. At most one Run is in flight at a time.
//
// Arguments:
//   - inputs: The named input tensors for this pass.
//
// Returns:
//   - []Value: The named output tensors, in signature order.
//   - error: A backend-tagged *Error on validation or execution failure.
func (s *Session) Run(inputs []Value) ([]Value, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	backend := string(s.backend)
	if s.closed {
		return nil, newError(backend, "run", errors.New("session is closed"))
	}
	if err := s.signature.ValidateInputs(inputs); err != nil {
		return nil, newError(backend, "validate", err)
	}

	for i := range inputs {
		v := &inputs[i]
		if v.DType() == Int32 {
			copy(s.intBuffers[v.Name], v.Ints)
		} else {
			copy(s.floatBuffers[v.Name], v.Floats)
		}
	}

	if err := s.session.Run(); err != nil {
		return nil, newError(backend, "run", err)
	}

	outputs := make([]Value, 0, len(s.signature.Outputs))
	for _, spec := range s.signature.Outputs {
		out := Value{Name: spec.Name, Shape: append([]int64{}, spec.Shape...)}
		if spec.DType == Int32 {
			out.Ints = append([]int32{}, s.intBuffers[spec.Name]...)
		} else {
			out.Floats = append([]float32{}, s.floatBuffers[spec.Name]...)
		}
		outputs = append(outputs, out)
	}
	return outputs, nil
}

// Close releases the session and every tensor it bound. Safe to call more
// than once.
//
// Returns:
//   - error: A backend-tagged *Error if the native session teardown fails.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	for _, t := range s.inputTensors {
		t.Destroy()
	}
	s.inputTensors = nil
	for _, t := range s.outputTensors {
		t.Destroy()
	}
	s.outputTensors = nil
	s.floatBuffers = nil
	s.intBuffers = nil

	if s.session != nil {
		if err := s.session.Destroy(); err != nil {
			s.session = nil
			return newError(string(s.backend), "close", err)
		}
		s.session = nil
	}
	return nil
}
