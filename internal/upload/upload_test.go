package upload

import (
	"context"
	"errors"
	"testing"

	"github.com/solidgen/solidgen-go/internal/model"
)

type fakeAPI struct {
	signResp model.SignedUpload
	signErr  error

	createResp model.JobReceipt
	createErr  error

	signCalls   int
	createCalls int

	gotContentType string
	gotFileExt     string
	gotCreate      model.CreateJobRequest
}

var _ API = (*fakeAPI)(nil)

func (f *fakeAPI) SignUpload(_ context.Context, _, contentType, fileExt string) (model.SignedUpload, error) {
	f.signCalls++
	f.gotContentType = contentType
	f.gotFileExt = fileExt
	return f.signResp, f.signErr
}

func (f *fakeAPI) CreateJob(_ context.Context, _ string, req model.CreateJobRequest) (model.JobReceipt, error) {
	f.createCalls++
	f.gotCreate = req
	return f.createResp, f.createErr
}

type fakePutter struct {
	err   error
	calls int

	gotURL         string
	gotContentType string
	gotLen         int
}

var _ ObjectPutter = (*fakePutter)(nil)

func (p *fakePutter) Put(_ context.Context, url, contentType string, data []byte) error {
	p.calls++
	p.gotURL = url
	p.gotContentType = contentType
	p.gotLen = len(data)
	return p.err
}

func validParams() model.JobParams { return model.DefaultJobParams() }

func TestDetectImageType(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name     string
		wantExt  string
		wantType string
	}{
		{"photo.png", "png", "image/png"},
		{"photo.jpg", "jpg", "image/jpeg"},
		{"photo.jpeg", "jpeg", "image/jpeg"},
		{"PHOTO.JPG", "jpg", "image/jpeg"},
		{"photo.webp", "webp", "image/webp"},
		{"photo.gif", "png", "image/png"},
		{"noext", "png", "image/png"},
		{"dir.v2/archive.tar", "png", "image/png"},
	}
	for _, tc := range cases {
		ext, ct := DetectImageType(tc.name)
		if ext != tc.wantExt || ct != tc.wantType {
			t.Fatalf("%s: got (%s,%s) want (%s,%s)", tc.name, ext, ct, tc.wantExt, tc.wantType)
		}
	}
}

func TestFlow_Run_OrderedSteps(t *testing.T) {
	t.Parallel()
	api := &fakeAPI{
		signResp:   model.SignedUpload{UploadURL: "https://storage/put", GCSURI: "gs://b/o.png", ObjectName: "o.png"},
		createResp: model.JobReceipt{JobID: "j1", Status: model.StatusQueued, CostCredits: 5},
	}
	putter := &fakePutter{}
	flow := NewFlow(api, putter, nil)

	receipt, err := flow.Run(context.Background(), "tok1", "cat.webp", []byte("img"), validParams())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if receipt.JobID != "j1" || receipt.CostCredits != 5 {
		t.Fatalf("bad receipt: %+v", receipt)
	}

	if api.gotContentType != "image/webp" || api.gotFileExt != "webp" {
		t.Fatalf("bad sign request: %s %s", api.gotContentType, api.gotFileExt)
	}
	if putter.gotURL != "https://storage/put" || putter.gotContentType != "image/webp" || putter.gotLen != 3 {
		t.Fatalf("bad put: %+v", putter)
	}
	if api.gotCreate.InputGCSURI != "gs://b/o.png" {
		t.Fatalf("job does not reference uploaded object: %+v", api.gotCreate)
	}
	if api.gotCreate.Resolution != 1024 || api.gotCreate.DecimationTarget != 500000 || api.gotCreate.TextureSize != 2048 {
		t.Fatalf("params not passed through: %+v", api.gotCreate)
	}
}

func TestFlow_Run_SignFailureAbortsFlow(t *testing.T) {
	t.Parallel()
	api := &fakeAPI{signErr: errors.New("boom")}
	putter := &fakePutter{}
	flow := NewFlow(api, putter, nil)

	if _, err := flow.Run(context.Background(), "tok1", "a.png", []byte("x"), validParams()); err == nil {
		t.Fatalf("want error")
	}
	if putter.calls != 0 || api.createCalls != 0 {
		t.Fatalf("later steps attempted after sign failure: put=%d create=%d", putter.calls, api.createCalls)
	}
}

func TestFlow_Run_PutFailureSkipsJobCreation(t *testing.T) {
	t.Parallel()
	api := &fakeAPI{signResp: model.SignedUpload{UploadURL: "u", GCSURI: "g"}}
	putter := &fakePutter{err: &PutError{Status: 403, Message: "expired"}}
	flow := NewFlow(api, putter, nil)

	_, err := flow.Run(context.Background(), "tok1", "a.png", []byte("x"), validParams())
	if err == nil {
		t.Fatalf("want error")
	}
	var putErr *PutError
	if !errors.As(err, &putErr) || putErr.Status != 403 {
		t.Fatalf("want PutError(403), got %v", err)
	}
	if api.createCalls != 0 {
		t.Fatalf("job created despite failed upload")
	}
}

func TestFlow_Run_ValidatesLocallyBeforeAnyCall(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		data   []byte
		params model.JobParams
	}{
		{"empty data", nil, validParams()},
		{"bad resolution", []byte("x"), model.JobParams{Resolution: 800, DecimationTarget: 1, TextureSize: 2048}},
		{"bad texture", []byte("x"), model.JobParams{Resolution: 512, DecimationTarget: 1, TextureSize: 999}},
		{"bad decimation", []byte("x"), model.JobParams{Resolution: 512, DecimationTarget: 0, TextureSize: 1024}},
	}
	for _, tc := range cases {
		api := &fakeAPI{}
		putter := &fakePutter{}
		flow := NewFlow(api, putter, nil)

		if _, err := flow.Run(context.Background(), "tok1", "a.png", tc.data, tc.params); err == nil {
			t.Fatalf("%s: want validation error", tc.name)
		}
		if api.signCalls != 0 || putter.calls != 0 || api.createCalls != 0 {
			t.Fatalf("%s: network calls issued before validation", tc.name)
		}
	}
}

func TestFlow_Run_CreateJobFailurePropagates(t *testing.T) {
	t.Parallel()
	api := &fakeAPI{
		signResp:  model.SignedUpload{UploadURL: "u", GCSURI: "g"},
		createErr: errors.New("insufficient credits"),
	}
	flow := NewFlow(api, &fakePutter{}, nil)

	if _, err := flow.Run(context.Background(), "tok1", "a.png", []byte("x"), validParams()); err == nil {
		t.Fatalf("want propagated create-job error")
	}
}
