package yolo

import (
	"context"
	"fmt"
	"image"
	"sync"

	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"tryon/detect"
	"tryon/imaging"
)

const (
	inputSize      = 640
	scaleRatio     = 1.0 / 255.0
	scoreThreshold = 0.5
	nmsThreshold   = 0.4
)

// Detector runs a YOLOv8 ONNX network locally through OpenCV's DNN module.
// One instance serves the whole process. The network binds its input as
// mutable native state and is not safe for concurrent forward passes, so
// Detect serializes inference across requests.
type Detector struct {
	mu          sync.Mutex
	net         gocv.Net
	params      gocv.ImageToBlobParams
	outputNames []string
	logger      *zap.Logger
}

// MustDetector loads the ONNX model or panics. Called once at startup.
func MustDetector(modelPath string, logger *zap.Logger) *Detector {
	net := gocv.ReadNetFromONNX(modelPath)
	if net.Empty() {
		panic(fmt.Sprintf("failed to load detection model from %q", modelPath))
	}

	_ = net.SetPreferableBackend(gocv.NetBackendOpenCV)
	_ = net.SetPreferableTarget(gocv.NetTargetCPU)

	outputNames := outputLayerNames(&net)
	if len(outputNames) == 0 {
		panic("detection model has no output layers")
	}

	params := gocv.NewImageToBlobParams(
		scaleRatio,
		image.Pt(inputSize, inputSize),
		gocv.NewScalar(0, 0, 0, 0),
		false,
		gocv.MatTypeCV32F,
		gocv.DataLayoutNCHW,
		gocv.PaddingModeLetterbox,
		gocv.NewScalar(144.0, 0, 0, 0),
	)

	return &Detector{
		net:         net,
		params:      params,
		outputNames: outputNames,
		logger:      logger.Named("yolo"),
	}
}

// Close releases the network. Teardown happens on process shutdown.
func (d *Detector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.net.Close()
}

// Detect runs one forward pass and maps the NMS-filtered candidates back to
// source-image coordinates.
func (d *Detector) Detect(ctx context.Context, img *imaging.Image) ([]detect.Box, error) {
	// the DNN call cannot be interrupted midway, so honor an already
	// expired deadline before paying for inference
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mat, err := gocv.IMDecode(img.Bytes, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("decode image for detection: %w", err)
	}
	defer mat.Close()

	if mat.Empty() {
		return nil, fmt.Errorf("decode image for detection: empty matrix")
	}

	blob := gocv.BlobFromImageWithParams(mat, d.params)
	defer blob.Close()

	rects, scores, classIDs := d.infer(blob)
	if len(rects) == 0 {
		return nil, nil
	}

	imageRects := d.params.BlobRectsToImageRects(rects, image.Pt(mat.Cols(), mat.Rows()))
	kept := gocv.NMSBoxes(imageRects, scores, scoreThreshold, nmsThreshold)

	frame := image.Rect(0, 0, img.Width, img.Height)
	boxes := make([]detect.Box, 0, len(kept))
	for _, idx := range kept {
		boxes = append(boxes, detect.Box{
			Class:      className(classIDs[idx]),
			Confidence: scores[idx],
			// letterbox unpadding can overshoot by a pixel or two
			Rect: imageRects[idx].Intersect(frame),
		})
	}

	d.logger.Debug(fmt.Sprintf("detection kept %d of %d candidates", len(boxes), len(rects)))

	return boxes, nil
}

// infer runs one forward pass and parses the candidates under the lock; the
// output tensors may alias network-internal buffers that the next forward
// pass overwrites.
func (d *Detector) infer(blob gocv.Mat) ([]image.Rectangle, []float32, []int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.net.SetInput(blob, "")

	outputs := d.net.ForwardLayers(d.outputNames)
	defer func() {
		for _, out := range outputs {
			out.Close()
		}
	}()

	return parseCandidates(outputs)
}

// parseCandidates unpacks YOLOv8 output tensors. After transposing, each row
// is one candidate: columns 0-3 hold center x/y and width/height in blob
// coordinates, the remaining columns hold per-class scores.
func parseCandidates(outputs []gocv.Mat) ([]image.Rectangle, []float32, []int) {
	if len(outputs) == 0 {
		return nil, nil, nil
	}

	var (
		rects    []image.Rectangle
		scores   []float32
		classIDs []int
	)

	// v8 exports put candidates on the last axis
	gocv.TransposeND(outputs[0], []int{0, 2, 1}, &outputs[0])

	for _, out := range outputs {
		rowsView := out.Reshape(1, out.Size()[1])
		cols := rowsView.Cols()

		for i := 0; i < rowsView.Rows(); i++ {
			row := rowsView.RowRange(i, i+1)
			classScores := row.ColRange(4, cols)

			_, confidence, _, classAt := gocv.MinMaxLoc(classScores)
			if confidence > scoreThreshold {
				cx := rowsView.GetFloatAt(i, 0)
				cy := rowsView.GetFloatAt(i, 1)
				w := rowsView.GetFloatAt(i, 2)
				h := rowsView.GetFloatAt(i, 3)

				rects = append(rects, image.Rect(
					int(cx-w/2), int(cy-h/2),
					int(cx+w/2), int(cy+h/2),
				))
				scores = append(scores, confidence)
				classIDs = append(classIDs, classAt.X)
			}

			classScores.Close()
			row.Close()
		}

		rowsView.Close()
	}

	return rects, scores, classIDs
}

func outputLayerNames(net *gocv.Net) []string {
	var names []string
	for _, i := range net.GetUnconnectedOutLayers() {
		layer := net.GetLayer(i)
		if name := layer.GetName(); name != "_input" {
			names = append(names, name)
		}
	}

	return names
}
