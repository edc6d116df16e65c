// Package export writes trial artifacts for offline analysis: a
// parquet archive of the raw keypoints and a JSON report of the
// outcome and computed metrics.
package export

import (
	"fmt"
	"math"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/steady-data/balance.report/internal/pose"
)

// Coordinate space labels used in the keypoints archive.
const (
	SpaceNorm  = "norm"
	SpaceWorld = "world"
)

type keypointRow struct {
	TrialID    string  `parquet:"name=trial_id, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	FrameIndex int64   `parquet:"name=frame_index, type=INT64"`
	ElapsedS   float64 `parquet:"name=elapsed_s, type=DOUBLE"`
	Space      string  `parquet:"name=space, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Joint      string  `parquet:"name=joint, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	X          float64 `parquet:"name=x, type=DOUBLE"`
	Y          float64 `parquet:"name=y, type=DOUBLE"`
	Z          float64 `parquet:"name=z, type=DOUBLE"`
	Visibility float64 `parquet:"name=visibility, type=DOUBLE"`
	Present    bool    `parquet:"name=present, type=BOOLEAN"`
}

// WriteKeypoints archives the recorded frames as parquet, one row per
// frame, coordinate space and joint. Absent joints keep their row with
// NaN coordinates and present=false so the schema stays identical
// across trials.
func WriteKeypoints(path, trialID string, frames []pose.Frame) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return fmt.Errorf("failed to create keypoints file %s: %w", path, err)
	}
	pw, err := writer.NewParquetWriter(fw, new(keypointRow), 4)
	if err != nil {
		_ = fw.Close()
		return fmt.Errorf("failed to create parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, f := range frames {
		spaces := [...]struct {
			name  string
			marks pose.LandmarkSet
		}{
			{SpaceNorm, f.Norm},
			{SpaceWorld, f.World},
		}
		for _, space := range spaces {
			for _, joint := range pose.AllJoints() {
				row := keypointRow{
					TrialID:    trialID,
					FrameIndex: int64(f.Index),
					ElapsedS:   f.Timestamp.Seconds(),
					Space:      space.name,
					Joint:      joint.String(),
				}
				if lm, ok := space.marks.At(joint); ok {
					row.X, row.Y, row.Z = lm.X, lm.Y, lm.Z
					row.Visibility = lm.Visibility
					row.Present = true
				} else {
					nan := math.NaN()
					row.X, row.Y, row.Z, row.Visibility = nan, nan, nan, nan
				}
				if err := pw.Write(row); err != nil {
					_ = pw.WriteStop()
					_ = fw.Close()
					return fmt.Errorf("failed to write keypoint row: %w", err)
				}
			}
		}
	}
	if err := pw.WriteStop(); err != nil {
		_ = fw.Close()
		return fmt.Errorf("failed to finalize keypoints file: %w", err)
	}
	return fw.Close()
}
