package pricing_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sokoni-labs/sokoni/core/pricing"
	"github.com/sokoni-labs/sokoni/core/types"
)

func tshirt() types.Product {
	return types.Product{
		Name:          "T-Shirt",
		Kind:          types.ProductPhysical,
		Price:         20000,
		StockQuantity: -1,
		Variants: []types.VariantGroup{
			{
				Name: "Taille",
				Mode: types.PricingFixed,
				Options: []types.VariantOption{
					{Value: "L", Price: 30000},
					{Value: "XL", Price: 32000},
				},
			},
		},
	}
}

var _ = Describe("Resolve", func() {
	It("prices a plain product at its base price", func() {
		res, err := pricing.Resolve(types.Product{Name: "Mug", Price: 5000}, nil, "")
		Expect(err).ToNot(HaveOccurred())
		Expect(res.Finalizable()).To(BeTrue())
		Expect(res.UnitPrice).To(Equal(int64(5000)))
		Expect(res.Label).To(Equal("Mug"))
	})

	It("replaces the base price with the chosen fixed option", func() {
		res, err := pricing.Resolve(tshirt(), map[string]string{"Taille": "L"}, "")
		Expect(err).ToNot(HaveOccurred())
		Expect(res.UnitPrice).To(Equal(int64(30000)))
		Expect(res.Label).To(Equal("T-Shirt L"))
	})

	It("ignores the base price entirely for fixed options", func() {
		p := tshirt()
		p.Price = 1
		res, err := pricing.Resolve(p, map[string]string{"Taille": "XL"}, "")
		Expect(err).ToNot(HaveOccurred())
		Expect(res.UnitPrice).To(Equal(int64(32000)))
	})

	It("keeps the base price when the fixed option has no price", func() {
		p := tshirt()
		p.Variants[0].Options = []types.VariantOption{{Value: "Standard"}}
		res, err := pricing.Resolve(p, map[string]string{"Taille": "Standard"}, "")
		Expect(err).ToNot(HaveOccurred())
		Expect(res.UnitPrice).To(Equal(int64(20000)))
	})

	It("sums additive options onto the base price", func() {
		p := types.Product{
			Name:  "Pizza",
			Price: 6000,
			Variants: []types.VariantGroup{
				{Name: "Fromage", Mode: types.PricingAdditive, Options: []types.VariantOption{{Value: "Extra", Price: 1000}}},
				{Name: "Bords", Mode: types.PricingAdditive, Options: []types.VariantOption{{Value: "Fourrés", Price: 1500}}},
			},
		}
		res, err := pricing.Resolve(p, map[string]string{"Fromage": "Extra", "Bords": "Fourrés"}, "")
		Expect(err).ToNot(HaveOccurred())
		Expect(res.UnitPrice).To(Equal(int64(8500)))
	})

	It("adds supplements on top of a replaced fixed price", func() {
		p := tshirt()
		p.Variants = append(p.Variants, types.VariantGroup{
			Name:    "Broderie",
			Mode:    types.PricingAdditive,
			Options: []types.VariantOption{{Value: "Initiales", Price: 2000}},
		})
		res, err := pricing.Resolve(p, map[string]string{"Taille": "L", "Broderie": "Initiales"}, "")
		Expect(err).ToNot(HaveOccurred())
		Expect(res.UnitPrice).To(Equal(int64(32000)))
		Expect(res.Label).To(Equal("T-Shirt L Initiales"))
	})

	It("reports exactly the unselected groups as missing", func() {
		res, err := pricing.Resolve(tshirt(), nil, "")
		Expect(err).ToNot(HaveOccurred())
		Expect(res.Finalizable()).To(BeFalse())
		Expect(res.MissingNames()).To(ConsistOf("Taille"))
		Expect(res.UnitPrice).To(BeZero())
	})

	It("never treats an additive group as missing", func() {
		p := types.Product{
			Name:  "Pizza",
			Price: 6000,
			Variants: []types.VariantGroup{
				{Name: "Supplément", Mode: types.PricingAdditive, Options: []types.VariantOption{{Value: "Extra", Price: 1000}}},
			},
		}
		res, err := pricing.Resolve(p, nil, "")
		Expect(err).ToNot(HaveOccurred())
		Expect(res.Finalizable()).To(BeTrue())
		Expect(res.UnitPrice).To(Equal(int64(6000)))
	})

	It("leaves unselected supplements out of the price", func() {
		p := tshirt()
		p.Variants = append(p.Variants, types.VariantGroup{
			Name:    "Broderie",
			Mode:    types.PricingAdditive,
			Options: []types.VariantOption{{Value: "Initiales", Price: 2000}},
		})
		res, err := pricing.Resolve(p, map[string]string{"Taille": "L"}, "")
		Expect(err).ToNot(HaveOccurred())
		Expect(res.Finalizable()).To(BeTrue())
		Expect(res.UnitPrice).To(Equal(int64(30000)))
		Expect(res.Label).To(Equal("T-Shirt L"))
	})

	It("matches selections despite case and accents", func() {
		p := tshirt()
		p.Variants[0].Options = []types.VariantOption{{Value: "Édition Limitée", Price: 45000}}
		res, err := pricing.Resolve(p, map[string]string{"taille": "edition limitee"}, "")
		Expect(err).ToNot(HaveOccurred())
		Expect(res.UnitPrice).To(Equal(int64(45000)))
		Expect(res.Label).To(Equal("T-Shirt Édition Limitée"))
	})

	It("matches a partial option value", func() {
		g := types.VariantGroup{Name: "Couleur", Options: []types.VariantOption{{Value: "Bleu Marine"}}}
		Expect(pricing.MatchOption(g, "marine")).ToNot(BeNil())
		Expect(pricing.MatchOption(g, "rouge")).To(BeNil())
	})

	It("falls back to option values embedded in the free-text name", func() {
		res, err := pricing.Resolve(tshirt(), nil, "T-Shirt XL")
		Expect(err).ToNot(HaveOccurred())
		Expect(res.Finalizable()).To(BeTrue())
		Expect(res.UnitPrice).To(Equal(int64(32000)))
		Expect(res.Label).To(Equal("T-Shirt XL"))
	})

	It("still resolves the shorter option when that is the one embedded", func() {
		res, err := pricing.Resolve(tshirt(), nil, "T-Shirt L")
		Expect(err).ToNot(HaveOccurred())
		Expect(res.UnitPrice).To(Equal(int64(30000)))
		Expect(res.Label).To(Equal("T-Shirt L"))
	})

	It("skips variant groups without options", func() {
		p := tshirt()
		p.Variants = append(p.Variants, types.VariantGroup{Name: "Vide", Mode: types.PricingFixed})
		res, err := pricing.Resolve(p, map[string]string{"Taille": "L"}, "")
		Expect(err).ToNot(HaveOccurred())
		Expect(res.Finalizable()).To(BeTrue())
		Expect(res.UnitPrice).To(Equal(int64(30000)))
	})

	It("rejects products with two fixed groups", func() {
		p := tshirt()
		p.Variants = append(p.Variants, types.VariantGroup{
			Name:    "Coupe",
			Mode:    types.PricingFixed,
			Options: []types.VariantOption{{Value: "Slim", Price: 31000}},
		})
		_, err := pricing.Resolve(p, map[string]string{"Taille": "L", "Coupe": "Slim"}, "")
		Expect(err).To(MatchError(pricing.ErrAmbiguousFixedGroups))
	})
})
