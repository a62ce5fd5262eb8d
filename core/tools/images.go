package tools

import (
	"fmt"
	"strings"

	"github.com/sokoni-labs/sokoni/core/pricing"
	"github.com/sokoni-labs/sokoni/core/types"
)

type imageArgs struct {
	ProductName      string            `json:"product_name"`
	SelectedVariants map[string]string `json:"selected_variants"`
}

func (e *Executor) sendImage(inv Invocation, args types.ToolArgs) types.ToolCallResult {
	var ia imageArgs
	if err := args.Unmarshal(&ia); err != nil {
		return failedResult("send_image arguments did not match the expected shape")
	}
	if strings.TrimSpace(ia.ProductName) == "" {
		return validationResult(types.ReasonMissingField, "product_name", "ask which product the customer wants to see")
	}

	product := findProduct(inv.Products, ia.ProductName)
	if product == nil {
		return validationResult(types.ReasonUnknownProduct, "product_name",
			fmt.Sprintf("product %q is not in the catalogue", ia.ProductName))
	}

	imageURL := product.ImageURL
	variantName := ""
	if len(ia.SelectedVariants) > 0 {
		// A variant-specific photo wins over the product one.
		for _, g := range product.Variants {
			value, ok := selectedValue(g, ia.SelectedVariants)
			if !ok {
				continue
			}
			if opt := pricing.MatchOption(g, value); opt != nil && opt.ImageURL != "" {
				imageURL = opt.ImageURL
				variantName = opt.Value
				break
			}
		}
	}

	if imageURL == "" {
		return validationResult(types.ReasonNotFound, "product_name",
			fmt.Sprintf("there is no photo for %q", product.Name))
	}

	caption := fmt.Sprintf("Here is %s!", product.Name)
	if variantName != "" {
		caption = fmt.Sprintf("Here is %s (%s)!", product.Name, variantName)
	}

	return types.ToolCallResult{
		Status:  types.ToolSuccess,
		Message: caption,
		Payload: map[string]interface{}{
			"image_url":    imageURL,
			"caption":      caption,
			"product_name": product.Name,
		},
	}
}

func selectedValue(g types.VariantGroup, selections map[string]string) (string, bool) {
	for name, value := range selections {
		if strings.EqualFold(strings.TrimSpace(name), strings.TrimSpace(g.Name)) {
			return value, true
		}
	}
	return "", false
}
