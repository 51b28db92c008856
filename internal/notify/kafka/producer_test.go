package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	kgo "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honeycarbs/listing-watch/internal/domain"
)

var testListing = domain.Listing{Code: "brussels", PositionType: domain.PositionSeconded}

func testJobs(titles ...string) []domain.Job {
	jobs := make([]domain.Job, 0, len(titles))
	for _, t := range titles {
		jobs = append(jobs, domain.Job{JobRecord: domain.JobRecord{Title: t, Href: "/" + t}, ListingCode: "brussels"})
	}
	return jobs
}

func TestProducerNotify(t *testing.T) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	writer := NewMockMessageWriter(ctrl)
	prod := NewProducerWithWriter(writer)
	prod.clock = func() time.Time { return time.Unix(0, 0) }

	writer.EXPECT().
		WriteMessages(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, msgs ...kgo.Message) error {
			require.Len(t, msgs, 2)
			assert.Equal(t, "brussels", string(msgs[0].Key))
			assert.Equal(t, time.Unix(0, 0).UTC(), msgs[0].Time)

			var got Event
			require.NoError(t, json.Unmarshal(msgs[1].Value, &got))
			assert.Equal(t, "brussels", got.Listing)
			assert.Equal(t, domain.PositionSeconded, got.PositionType)
			assert.Equal(t, "Engineer", got.Job.Title)
			return nil
		})

	require.NoError(t, prod.Notify(context.Background(), testListing, testJobs("Analyst", "Engineer")))
}

func TestProducerNotifyError(t *testing.T) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	writer := NewMockMessageWriter(ctrl)
	prod := NewProducerWithWriter(writer)

	boom := errors.New("broker unavailable")
	writer.EXPECT().WriteMessages(gomock.Any(), gomock.Any()).Return(boom)

	err := prod.Notify(context.Background(), testListing, testJobs("Analyst"))
	assert.True(t, errors.Is(err, boom))
}

func TestProducerNotifyNoJobs(t *testing.T) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	prod := NewProducerWithWriter(NewMockMessageWriter(ctrl))

	assert.NoError(t, prod.Notify(context.Background(), testListing, nil))
}

func TestProducerClose(t *testing.T) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	writer := NewMockMessageWriter(ctrl)
	writer.EXPECT().Close().Return(nil)

	assert.NoError(t, NewProducerWithWriter(writer).Close())
}
