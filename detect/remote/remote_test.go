package remote

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tryon/imaging"
)

func testImage() *imaging.Image {
	return &imaging.Image{
		Bytes:  []byte("fake-image-bytes"),
		Format: "jpeg",
		Width:  640,
		Height: 480,
	}
}

func TestDetectMapsWireDetections(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()

		require.Equal(t, "image.jpeg", header.Filename)

		payload, err := io.ReadAll(file)
		require.NoError(t, err)
		require.Equal(t, []byte("fake-image-bytes"), payload)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"detections":[
			{"class":"person","confidence":0.91,"x":10,"y":20,"width":110,"height":320},
			{"class":"dog","confidence":0.55,"x":0,"y":0,"width":40,"height":30}
		]}`))
	}))
	defer server.Close()

	detector := New(server.URL, time.Second, zap.NewNop())

	boxes, err := detector.Detect(context.Background(), testImage())
	require.NoError(t, err)
	require.Len(t, boxes, 2)

	require.Equal(t, "person", boxes[0].Class)
	require.InDelta(t, 0.91, boxes[0].Confidence, 0.001)
	require.Equal(t, 10, boxes[0].Rect.Min.X)
	require.Equal(t, 20, boxes[0].Rect.Min.Y)
	require.Equal(t, 120, boxes[0].Rect.Max.X)
	require.Equal(t, 340, boxes[0].Rect.Max.Y)

	require.Equal(t, "dog", boxes[1].Class)
}

func TestDetectErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	detector := New(server.URL, time.Second, zap.NewNop())

	_, err := detector.Detect(context.Background(), testImage())
	require.Error(t, err)
	require.Contains(t, err.Error(), "inference failed with status: 500")
}

func TestDetectEmptyResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"detections":[]}`))
	}))
	defer server.Close()

	detector := New(server.URL, time.Second, zap.NewNop())

	boxes, err := detector.Detect(context.Background(), testImage())
	require.NoError(t, err)
	require.Empty(t, boxes)
}

func TestCheckHealth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	detector := New(server.URL, time.Second, zap.NewNop())
	require.NoError(t, detector.CheckHealth(context.Background()))
}

func TestCheckHealthUnhealthy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	detector := New(server.URL, time.Second, zap.NewNop())

	err := detector.CheckHealth(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "503")
}
