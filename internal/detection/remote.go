package detection

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/antonholmquist/jason"

	"github.com/wastenet/wastenet-go/internal/errors"
	"github.com/wastenet/wastenet-go/internal/httpclient"
	"github.com/wastenet/wastenet-go/internal/logger"
)

const (
	// uploadField is the multipart field the inference service reads.
	uploadField = "file"
	// maxErrorBody bounds how much of a failed response is kept for the error message.
	maxErrorBody = 512
)

// RemoteDetector calls an inference service over HTTP.
//
// The service accepts a multipart upload and answers with
//
//	{"detections": [{"class_index": 0, "confidence": 0.92, "box": [10, 10, 50, 50]}],
//	 "class_names": {"0": "plastic", "1": "glass"}}
//
// where class_names may also be a plain JSON array.
type RemoteDetector struct {
	client   *httpclient.Client
	endpoint string
	timeout  time.Duration
	log      logger.Logger
}

// NewRemoteDetector returns a detector posting images to endpoint.
// A zero timeout falls back to the client's default.
func NewRemoteDetector(client *httpclient.Client, endpoint string, timeout time.Duration, log logger.Logger) *RemoteDetector {
	if client == nil {
		client = httpclient.New(nil)
	}
	if log == nil {
		log = logger.NewSlogLogger(nil, logger.LogLevelInfo, nil)
	}
	return &RemoteDetector{
		client:   client,
		endpoint: endpoint,
		timeout:  timeout,
		log:      log.Module("remote"),
	}
}

// Detect uploads image and parses the detector response.
func (d *RemoteDetector) Detect(ctx context.Context, image []byte) (Detections, error) {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	body, contentType, err := multipartBody(image)
	if err != nil {
		return Detections{}, err
	}

	start := time.Now()
	resp, err := d.client.Post(ctx, d.endpoint, contentType, body)
	if err != nil {
		return Detections{}, errors.New(err).
			Component("detection").
			Category(errors.CategoryNetwork).
			NetworkContext(d.endpoint, d.timeout).
			Context("operation", "detect").
			Build()
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return Detections{}, errors.Newf("detector returned %s: %s", resp.Status, bytes.TrimSpace(snippet)).
			Component("detection").
			Category(errors.CategoryDetection).
			Context("operation", "detect").
			Context("status_code", resp.StatusCode).
			Build()
	}

	dets, err := parseDetections(resp.Body)
	if err != nil {
		return Detections{}, err
	}

	d.log.Debug("detector responded",
		logger.Int("detections", len(dets.Items)),
		logger.Int("classes", len(dets.ClassNames)),
		logger.Duration("elapsed", time.Since(start)))

	return dets, nil
}

func multipartBody(image []byte) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile(uploadField, "image.jpg")
	if err != nil {
		return nil, "", fmt.Errorf("create multipart field: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return nil, "", fmt.Errorf("write multipart field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart body: %w", err)
	}

	return body, writer.FormDataContentType(), nil
}

func parseDetections(r io.Reader) (Detections, error) {
	obj, err := jason.NewObjectFromReader(r)
	if err != nil {
		return Detections{}, malformedResponse(err, "decode body")
	}

	names, err := parseClassNames(obj)
	if err != nil {
		return Detections{}, err
	}

	items, err := obj.GetObjectArray("detections")
	if err != nil {
		return Detections{}, malformedResponse(err, "detections")
	}

	dets := Detections{
		Items:      make([]RawDetection, 0, len(items)),
		ClassNames: names,
	}

	for i, item := range items {
		index, err := item.GetInt64("class_index")
		if err != nil {
			return Detections{}, malformedResponse(err, fmt.Sprintf("detections[%d].class_index", i))
		}
		confidence, err := item.GetFloat64("confidence")
		if err != nil {
			return Detections{}, malformedResponse(err, fmt.Sprintf("detections[%d].confidence", i))
		}
		coords, err := item.GetFloat64Array("box")
		if err != nil || len(coords) != 4 {
			if err == nil {
				err = fmt.Errorf("expected 4 coordinates, got %d", len(coords))
			}
			return Detections{}, malformedResponse(err, fmt.Sprintf("detections[%d].box", i))
		}

		dets.Items = append(dets.Items, RawDetection{
			ClassIndex: int(index),
			Confidence: confidence,
			Box:        Box{coords[0], coords[1], coords[2], coords[3]},
		})
	}

	return dets, nil
}

// parseClassNames accepts either ["plastic", "glass"] or {"0": "plastic", "1": "glass"}.
func parseClassNames(obj *jason.Object) (ClassNames, error) {
	if labels, err := obj.GetStringArray("class_names"); err == nil {
		return ClassNamesFromSlice(labels), nil
	}

	table, err := obj.GetObject("class_names")
	if err != nil {
		return nil, malformedResponse(err, "class_names")
	}

	entries := table.Map()
	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	names := make(ClassNames, len(entries))
	for _, key := range keys {
		index, err := strconv.Atoi(key)
		if err != nil {
			return nil, malformedResponse(err, "class_names key "+strconv.Quote(key))
		}
		label, err := entries[key].String()
		if err != nil {
			return nil, malformedResponse(err, "class_names["+key+"]")
		}
		names[index] = label
	}

	return names, nil
}

func malformedResponse(err error, field string) error {
	return errors.New(fmt.Errorf("malformed detector response at %s: %w", field, err)).
		Component("detection").
		Category(errors.CategoryDetection).
		Context("operation", "parse_detections").
		Build()
}
