package model

// Input geometry expected by every classifier backend.
const (
	ImageSize = 224
	Channels  = 3
)

// Category is one of the four fixed waste labels.
type Category string

const (
	Recyclable   Category = "Recyclable"
	Organic      Category = "Organic"
	Hazardous    Category = "Hazardous"
	GeneralWaste Category = "General Waste"
)

// Categories lists the labels in model output order.
var Categories = [NumClasses]Category{Recyclable, Organic, Hazardous, GeneralWaste}

// NumClasses is the width of the model's probability output.
const NumClasses = 4

// Tensor is a single-item NHWC batch of normalized pixels.
type Tensor struct {
	Shape [4]int
	Data  []float32
}

// NewTensor allocates a zeroed (1, ImageSize, ImageSize, Channels) tensor.
func NewTensor() Tensor {
	return Tensor{
		Shape: [4]int{1, ImageSize, ImageSize, Channels},
		Data:  make([]float32, ImageSize*ImageSize*Channels),
	}
}

// Prediction is the classifier's answer for one image.
type Prediction struct {
	Category      Category
	Confidence    float32
	Probabilities [NumClasses]float32
}

// ClassifyResponse is the JSON body returned by POST /classify.
type ClassifyResponse struct {
	Category             string  `json:"category"`
	Confidence           float32 `json:"confidence"`
	DisposalInstructions string  `json:"disposal_instructions"`
}
