package utils_test

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/stale-branches/internal/utils"
)

func TestFlushingWriterFlushesBufferedWriters(testInstance *testing.T) {
	var destination bytes.Buffer
	bufferedWriter := bufio.NewWriter(&destination)

	flushingWriter := utils.NewFlushingWriter(bufferedWriter)
	bytesWritten, writeError := flushingWriter.Write([]byte("s_no,stale_branch,deleted_branch\n"))

	require.NoError(testInstance, writeError)
	require.Equal(testInstance, 33, bytesWritten)
	require.Equal(testInstance, "s_no,stale_branch,deleted_branch\n", destination.String())
}

func TestNewFlushingWriterEdgeCases(testInstance *testing.T) {
	require.Nil(testInstance, utils.NewFlushingWriter(nil))

	var destination bytes.Buffer
	wrapped := utils.NewFlushingWriter(&destination)
	require.Same(testInstance, wrapped, utils.NewFlushingWriter(wrapped))
}
