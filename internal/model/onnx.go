package model

import (
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// ortEnv guards the process-wide ONNX Runtime initialization. A failed
// attempt is not cached, so a later call may retry with another library.
var ortEnv sync.Mutex

func initORT(libPath string) error {
	ortEnv.Lock()
	defer ortEnv.Unlock()
	if ort.IsInitialized() {
		return nil
	}
	if libPath != "" {
		ort.SetSharedLibraryPath(libPath)
	}
	return ort.InitializeEnvironment()
}

// onnxModel runs an exported classifier through ONNX Runtime. Tensors are
// created per call so concurrent Predict calls never share buffers.
type onnxModel struct {
	session    *ort.DynamicAdvancedSession
	inputName  string
	outputName string
}

func newONNXModel(modelPath, libPath string) (*onnxModel, error) {
	if err := initORT(libPath); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	inputs, outputs, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to read model info: %w", err)
	}
	if len(inputs) != 1 {
		return nil, fmt.Errorf("onnx: expected 1 input, got %d", len(inputs))
	}
	if len(outputs) == 0 {
		return nil, fmt.Errorf("onnx: model has no outputs")
	}
	if err := checkDims("input", inputs[0].Dimensions, []int64{ImageSize, ImageSize, Channels}); err != nil {
		return nil, err
	}
	if err := checkDims("output", outputs[0].Dimensions, []int64{NumClasses}); err != nil {
		return nil, err
	}

	session, err := ort.NewDynamicAdvancedSession(modelPath,
		[]string{inputs[0].Name}, []string{outputs[0].Name}, nil)
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create session: %w", err)
	}

	return &onnxModel{
		session:    session,
		inputName:  inputs[0].Name,
		outputName: outputs[0].Name,
	}, nil
}

// checkDims verifies everything after the batch axis. Negative dims are
// symbolic and accepted.
func checkDims(what string, got ort.Shape, want []int64) error {
	if len(got) != len(want)+1 {
		return fmt.Errorf("onnx: %s shape %v, want [N %v]", what, got, want)
	}
	for i, w := range want {
		if d := got[i+1]; d >= 0 && d != w {
			return fmt.Errorf("onnx: %s shape %v, want [N %v]", what, got, want)
		}
	}
	return nil
}

func (m *onnxModel) Predict(in Tensor) ([]float32, error) {
	shape := ort.NewShape(int64(in.Shape[0]), int64(in.Shape[1]), int64(in.Shape[2]), int64(in.Shape[3]))
	input, err := ort.NewTensor(shape, in.Data)
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create input tensor: %w", err)
	}
	defer input.Destroy()

	output, err := ort.NewEmptyTensor[float32](ort.NewShape(int64(in.Shape[0]), NumClasses))
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create output tensor: %w", err)
	}
	defer output.Destroy()

	if err := m.session.Run([]ort.Value{input}, []ort.Value{output}); err != nil {
		return nil, fmt.Errorf("onnx: inference failed: %w", err)
	}

	src := output.GetData()
	probs := make([]float32, len(src))
	copy(probs, src)
	return probs, nil
}

func (m *onnxModel) Kind() string { return "onnx" }

func (m *onnxModel) Close() error {
	if m.session != nil {
		return m.session.Destroy()
	}
	return nil
}

// DestroyRuntime tears down the ONNX Runtime environment if it was started.
// Call once at process exit, after every model is closed.
func DestroyRuntime() {
	if ort.IsInitialized() {
		_ = ort.DestroyEnvironment()
	}
}
