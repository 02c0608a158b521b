package cmd

import (
	"fmt"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/openrollup/evmstore/evm"
	"github.com/openrollup/evmstore/store"
)

// Manual exercise of the chunked transaction protocol against a configured
// backend, mainly for development and incident debugging.
var (
	chunkCmd = &cobra.Command{
		Use:   "chunk",
		Short: "Operate on chunked transactions under reassembly",
	}

	chunkCreateCmd = &cobra.Command{
		Use:   "create <tx hash> <num chunks>",
		Short: "Open a chunked transaction with the expected chunk count",
		Args:  cobra.ExactArgs(2),
		Run:   chunkCreate,
	}

	chunkPutCmd = &cobra.Command{
		Use:   "put <tx hash> <index> <payload hex>",
		Short: "Deliver one chunk, printing the full payload upon completion",
		Args:  cobra.ExactArgs(3),
		Run:   chunkPut,
	}

	chunkInfoCmd = &cobra.Command{
		Use:   "info <tx hash>",
		Short: "Show the expected chunk count of an open chunked transaction",
		Args:  cobra.ExactArgs(1),
		Run:   chunkInfo,
	}

	chunkRemoveCmd = &cobra.Command{
		Use:   "remove <tx hash>",
		Short: "Drop the reassembly state of an abandoned transaction",
		Args:  cobra.ExactArgs(1),
		Run:   chunkRemove,
	}
)

func init() {
	chunkCmd.AddCommand(chunkCreateCmd)
	chunkCmd.AddCommand(chunkPutCmd)
	chunkCmd.AddCommand(chunkInfoCmd)
	chunkCmd.AddCommand(chunkRemoveCmd)

	rootCmd.AddCommand(chunkCmd)
}

func mustParseChunkCount(raw string) uint16 {
	count, err := strconv.ParseUint(raw, 10, 16)
	if err != nil {
		logrus.WithError(err).WithField("numChunks", raw).Fatal("Invalid chunk count")
	}

	return uint16(count)
}

func chunkCreate(cmd *cobra.Command, args []string) {
	host, closer := mustOpenHost()
	defer store.CloseAll(closer)

	txHash := mustParseTxHash(args[0])
	numChunks := mustParseChunkCount(args[1])

	if err := evm.CreateChunkedTransaction(host, txHash, numChunks); err != nil {
		logrus.WithError(err).Fatal("Failed to create chunked transaction")
	}

	logrus.WithFields(logrus.Fields{
		"txHash":    txHash.Hex(),
		"numChunks": numChunks,
	}).Info("Chunked transaction created")
}

func chunkPut(cmd *cobra.Command, args []string) {
	host, closer := mustOpenHost()
	defer store.CloseAll(closer)

	txHash := mustParseTxHash(args[0])
	index := mustParseChunkCount(args[1])
	data := common.FromHex(args[2])

	payload, completed, err := evm.StoreTransactionChunk(host, txHash, index, data)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to store transaction chunk")
	}

	if !completed {
		logrus.WithField("index", index).Info("Chunk stored, transaction still incomplete")
		return
	}

	fmt.Printf("transaction complete, payload: %x\n", payload)
}

func chunkInfo(cmd *cobra.Command, args []string) {
	host, closer := mustOpenHost()
	defer store.CloseAll(closer)

	numChunks, err := evm.ChunkedTransactionNumChunks(host, mustParseTxHash(args[0]))
	if err != nil {
		logrus.WithError(err).Fatal("Failed to read chunked transaction")
	}

	fmt.Printf("num_chunks: %d\n", numChunks)
}

func chunkRemove(cmd *cobra.Command, args []string) {
	host, closer := mustOpenHost()
	defer store.CloseAll(closer)

	txHash := mustParseTxHash(args[0])

	if err := evm.RemoveChunkedTransaction(host, txHash); err != nil {
		logrus.WithError(err).Fatal("Failed to remove chunked transaction")
	}

	logrus.WithField("txHash", txHash.Hex()).Info("Chunked transaction removed")
}
