package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/architect/internal/observability"
	"github.com/jonathan/architect/internal/types"
)

var researchMaps bool

var researchCmd = &cobra.Command{
	Use:   "research <query>",
	Short: "Answer a market question grounded in web search",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runResearch,
}

var (
	pricingCategory string
	pricingCogs     float64
)

var pricingCmd = &cobra.Command{
	Use:   "pricing <product>",
	Short: "Recommend a retail price for a product",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPricing,
}

var (
	shippingWeight        float64
	shippingInternational bool
)

var shippingCmd = &cobra.Command{
	Use:   "shipping <destination>",
	Short: "Recommend a carrier for a shipment",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runShipping,
}

func init() {
	researchCmd.Flags().BoolVar(&researchMaps, "maps", false, "Also ground the answer in Google Maps")

	pricingCmd.Flags().Float64Var(&pricingCogs, "cogs", 0, "Cost of goods sold per unit (required)")
	pricingCmd.Flags().StringVar(&pricingCategory, "category", "", "Product category")
	_ = pricingCmd.MarkFlagRequired("cogs")

	shippingCmd.Flags().Float64Var(&shippingWeight, "weight", 0, "Package weight in ounces (required)")
	shippingCmd.Flags().BoolVar(&shippingInternational, "international", false, "Shipment crosses a border")
	_ = shippingCmd.MarkFlagRequired("weight")

	rootCmd.AddCommand(researchCmd, pricingCmd, shippingCmd)
}

func runResearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	sources := []types.GroundingSource{types.GroundWeb}
	if researchMaps {
		sources = append(sources, types.GroundMaps)
	}
	info, err := a.gateway.GetGroundedInfo(ctx, strings.Join(args, " "), sources)
	if err != nil {
		return err
	}
	observability.NewPrinter(os.Stdout).PrintGroundedInfo(info)
	return nil
}

func runPricing(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	product := strings.Join(args, " ")
	rec, err := a.panels.RecommendPrice(ctx, product, pricingCogs, pricingCategory)
	if err != nil {
		return err
	}
	observability.NewPrinter(os.Stdout).PrintPricing(product, rec)
	return nil
}

func runShipping(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	destination := strings.Join(args, " ")
	advice, err := a.panels.LogisticsAdvice(ctx, destination, shippingWeight, shippingInternational)
	if err != nil {
		return err
	}
	observability.NewPrinter(os.Stdout).PrintLogistics(destination, advice)
	return nil
}
