// Copyright FootAnalytics
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package writer implements a sink that renders delivered record batches to
// an io.Writer, typically standard output during local development.
package writer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/footanalytics/datasync/internal/sink"
)

var _ sink.Sender = &writerSink{}

type writerSink struct {
	writer io.Writer

	lock sync.Mutex
}

func NewSender(w io.Writer) sink.Sender {
	return &writerSink{
		writer: w,
	}
}

func (s *writerSink) Send(_ context.Context, data *sink.Data) error {
	builder := new(strings.Builder)

	builder.WriteString("Record batch:\n")
	builder.WriteString("\tSource: " + data.Source + " (" + string(data.SystemType) + ")\n")
	builder.WriteString("\tData type: " + string(data.DataType) + "\n")
	builder.WriteString("\tRecords: " + strconv.Itoa(len(data.Records)) + "\n\t\t")

	encoder := json.NewEncoder(builder)
	encoder.SetIndent("\t\t", "\t")
	_ = encoder.Encode(data.Records)
	builder.WriteString("\n")

	s.lock.Lock()
	defer s.lock.Unlock()
	fmt.Fprint(s.writer, builder.String())
	return nil
}
