package screening

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/molscreen/molscreen/internal/ingest"
	"github.com/molscreen/molscreen/pkg/errors"
)

// MockPredictor is a mock implementation of Predictor.
type MockPredictor struct {
	mock.Mock
}

func (m *MockPredictor) Predict(ctx context.Context, smiles []string) ([]Prediction, error) {
	args := m.Called(ctx, smiles)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Prediction), args.Error(1)
}

func newTestService(p Predictor) *Service {
	return NewService(nil, ingest.NewNormalizer(nil), p, NewStore(time.Minute, nil), nil)
}

func TestScreenText_Success(t *testing.T) {
	p := new(MockPredictor)
	p.On("Predict", mock.Anything, []string{"CCO", "CCN"}).Return([]Prediction{
		{SMILES: "CCO", Classification: ClassificationInhibitor, PotencyClass: intPtr(1), IC50: floatPtr(100)},
		{SMILES: "CCN", Classification: ClassificationDecoy},
	}, nil)

	svc := newTestService(p)
	summary, err := svc.ScreenText(context.Background(), "sid", "CCO, CCN")
	require.NoError(t, err)

	require.Len(t, summary.Rows, 2)
	assert.Equal(t, 1, summary.TypeCounts[ClassificationDecoy])

	// The result set is retrievable until replaced or cleared.
	current, ok := svc.Current("sid")
	require.True(t, ok)
	assert.Equal(t, summary.Rows, current.Rows)

	p.AssertExpectations(t)
}

func TestScreenText_EmptyInputNeverCallsPredictor(t *testing.T) {
	p := new(MockPredictor)
	svc := newTestService(p)

	_, err := svc.ScreenText(context.Background(), "sid", "  \n , ")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeInputEmpty))

	p.AssertNotCalled(t, "Predict", mock.Anything, mock.Anything)
}

func TestScreenText_TooManyNeverCallsPredictor(t *testing.T) {
	p := new(MockPredictor)
	svc := newTestService(p)

	text := ""
	for i := 0; i < ingest.MaxCompounds+1; i++ {
		text += "CCO\n"
	}
	_, err := svc.ScreenText(context.Background(), "sid", text)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeInputTooManyCompounds))

	p.AssertNotCalled(t, "Predict", mock.Anything, mock.Anything)
}

func TestScreenFile_Success(t *testing.T) {
	p := new(MockPredictor)
	p.On("Predict", mock.Anything, []string{"CCO", "CCN"}).Return([]Prediction{
		{SMILES: "CCO", Classification: ClassificationDecoy},
		{SMILES: "CCN", Classification: ClassificationDecoy},
	}, nil)

	svc := newTestService(p)
	summary, err := svc.ScreenFile(context.Background(), "sid", "in.csv", []byte("SMILES\nCCO\nCCN\n"))
	require.NoError(t, err)
	assert.Len(t, summary.Rows, 2)

	view := svc.Store().Get("sid").Snapshot()
	assert.Equal(t, SourceFile, view.Source)
	assert.Equal(t, "in.csv", view.FileName)

	p.AssertExpectations(t)
}

func TestScreenFile_ParseFailureNeverCallsPredictor(t *testing.T) {
	p := new(MockPredictor)
	svc := newTestService(p)

	_, err := svc.ScreenFile(context.Background(), "sid", "bad.xlsx", []byte("not a workbook"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeInputParseFailed))

	p.AssertNotCalled(t, "Predict", mock.Anything, mock.Anything)
}

func TestScreenFile_NoCompoundsNeverCallsPredictor(t *testing.T) {
	p := new(MockPredictor)
	svc := newTestService(p)

	// A header-only file parses fine but yields nothing usable.
	_, err := svc.ScreenFile(context.Background(), "sid", "header_only.csv", []byte("SMILES\n"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeInputNoCompounds))
	assert.Contains(t, err.Error(), "no compounds found")

	p.AssertNotCalled(t, "Predict", mock.Anything, mock.Anything)
}

func TestScreen_UpstreamFailureClearsPriorResults(t *testing.T) {
	p := new(MockPredictor)
	p.On("Predict", mock.Anything, []string{"CCO"}).Return([]Prediction{
		{SMILES: "CCO", Classification: ClassificationInhibitor, PotencyClass: intPtr(0), IC50: floatPtr(5)},
	}, nil).Once()
	p.On("Predict", mock.Anything, []string{"CCN"}).Return(nil,
		errors.New(errors.CodePredictionRejected, "bad request")).Once()

	svc := newTestService(p)

	_, err := svc.ScreenText(context.Background(), "sid", "CCO")
	require.NoError(t, err)
	_, ok := svc.Current("sid")
	require.True(t, ok)

	_, err = svc.ScreenText(context.Background(), "sid", "CCN")
	require.Error(t, err)
	assert.True(t, errors.IsUpstream(err))

	// Selecting a new input cleared the old results; the failed call
	// installed nothing.
	_, ok = svc.Current("sid")
	assert.False(t, ok)

	// The in-flight flag was released: a new submission is accepted.
	p.On("Predict", mock.Anything, []string{"CCC"}).Return([]Prediction{
		{SMILES: "CCC", Classification: ClassificationDecoy},
	}, nil).Once()
	_, err = svc.ScreenText(context.Background(), "sid", "CCC")
	assert.NoError(t, err)

	p.AssertExpectations(t)
}

func TestClear(t *testing.T) {
	p := new(MockPredictor)
	p.On("Predict", mock.Anything, mock.Anything).Return([]Prediction{
		{SMILES: "CCO", Classification: ClassificationDecoy},
	}, nil)

	svc := newTestService(p)
	_, err := svc.ScreenText(context.Background(), "sid", "CCO")
	require.NoError(t, err)

	svc.Clear("sid")
	_, ok := svc.Current("sid")
	assert.False(t, ok)
}
