package cmd

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/openrollup/evmstore/evm"
	"github.com/openrollup/evmstore/store"
	"github.com/openrollup/evmstore/types"
)

var (
	inspectCmd = &cobra.Command{
		Use:   "inspect",
		Short: "Inspect entities persisted in the durable store",
	}

	currentBlockCmd = &cobra.Command{
		Use:   "current-block",
		Short: "Show the block the current pointer resolves to",
		Run:   inspectCurrentBlock,
	}

	blockCmd = &cobra.Command{
		Use:   "block <number>",
		Short: "Show the block stored under the given number",
		Args:  cobra.ExactArgs(1),
		Run:   inspectBlock,
	}

	receiptCmd = &cobra.Command{
		Use:   "receipt <tx hash>",
		Short: "Show the receipt of the given transaction",
		Args:  cobra.ExactArgs(1),
		Run:   inspectReceipt,
	}

	objectCmd = &cobra.Command{
		Use:   "object <tx hash>",
		Short: "Show the stored object of the given transaction",
		Args:  cobra.ExactArgs(1),
		Run:   inspectObject,
	}

	statusCmd = &cobra.Command{
		Use:   "status <tx hash>",
		Short: "Show the execution status of the given transaction",
		Args:  cobra.ExactArgs(1),
		Run:   inspectStatus,
	}

	rollupAddressCmd = &cobra.Command{
		Use:   "rollup-address",
		Short: "Show the smart rollup address of this deployment",
		Run:   inspectRollupAddress,
	}
)

func init() {
	inspectCmd.AddCommand(currentBlockCmd)
	inspectCmd.AddCommand(blockCmd)
	inspectCmd.AddCommand(receiptCmd)
	inspectCmd.AddCommand(objectCmd)
	inspectCmd.AddCommand(statusCmd)
	inspectCmd.AddCommand(rollupAddressCmd)

	rootCmd.AddCommand(inspectCmd)
}

func mustParseTxHash(raw string) common.Hash {
	data := common.FromHex(raw)
	if len(data) != common.HashLength {
		logrus.WithField("hash", raw).Fatal("Invalid transaction hash")
	}

	return common.BytesToHash(data)
}

func mustParseBlockNumber(raw string) *uint256.Int {
	number, err := uint256.FromDecimal(raw)
	if err != nil {
		logrus.WithError(err).WithField("number", raw).Fatal("Invalid block number")
	}

	return number
}

func dumpBlock(block *types.L2Block) {
	fmt.Printf("number:       %v\n", block.Number.Dec())
	fmt.Printf("hash:         %x\n", block.Hash)
	fmt.Printf("transactions: %v\n", len(block.Transactions))

	for i, txHash := range block.Transactions {
		fmt.Printf("  [%d] %x\n", i, txHash)
	}
}

func inspectCurrentBlock(*cobra.Command, []string) {
	host, closer := mustOpenHost()
	defer store.CloseAll(closer)

	block, err := evm.ReadCurrentBlock(host)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to read current block")
	}

	dumpBlock(block)
}

func inspectBlock(cmd *cobra.Command, args []string) {
	host, closer := mustOpenHost()
	defer store.CloseAll(closer)

	number := mustParseBlockNumber(args[0])

	block, err := evm.ReadBlock(host, number)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to read block")
	}

	dumpBlock(block)
}

func inspectReceipt(cmd *cobra.Command, args []string) {
	host, closer := mustOpenHost()
	defer store.CloseAll(closer)

	receipt, err := evm.ReadTransactionReceipt(host, mustParseTxHash(args[0]))
	if err != nil {
		logrus.WithError(err).Fatal("Failed to read transaction receipt")
	}

	fmt.Printf("%+v\n", receipt)
}

func inspectObject(cmd *cobra.Command, args []string) {
	host, closer := mustOpenHost()
	defer store.CloseAll(closer)

	object, err := evm.ReadTransactionObject(host, mustParseTxHash(args[0]))
	if err != nil {
		logrus.WithError(err).Fatal("Failed to read transaction object")
	}

	fmt.Printf("%+v\n", object)
}

func inspectStatus(cmd *cobra.Command, args []string) {
	host, closer := mustOpenHost()
	defer store.CloseAll(closer)

	status, err := evm.ReadTransactionReceiptStatus(host, mustParseTxHash(args[0]))
	if err != nil {
		logrus.WithError(err).Fatal("Failed to read transaction status")
	}

	fmt.Printf("status: %d\n", status)
}

func inspectRollupAddress(*cobra.Command, []string) {
	host, closer := mustOpenHost()
	defer store.CloseAll(closer)

	address, err := evm.ReadSmartRollupAddress(host)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to read smart rollup address")
	}

	fmt.Printf("%x\n", address)
}
