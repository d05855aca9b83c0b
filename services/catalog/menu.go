package catalog

const defaultCurrency = "EUR"

type menuItem struct {
	uid         string
	name        string
	description string
	price       string
}

// defaultMenu is installed on an empty product store
var defaultMenu = []menuItem{
	{uid: "espresso", name: "Espresso", description: "A short and strong shot of our house blend.", price: "2.20"},
	{uid: "americano", name: "Americano", description: "Espresso lengthened with hot water.", price: "2.60"},
	{uid: "cappuccino", name: "Cappuccino", description: "Espresso with steamed milk and a thick layer of foam.", price: "3.20"},
	{uid: "latte", name: "Latte", description: "Espresso with plenty of steamed milk.", price: "3.50"},
	{uid: "flat-white", name: "Flat white", description: "Double ristretto with velvety milk.", price: "3.60"},
	{uid: "tea", name: "Tea", description: "A pot of black, green or herbal tea.", price: "2.40"},
	{uid: "croissant", name: "Croissant", description: "Buttery, flaky and baked this morning.", price: "2.80"},
	{uid: "cheesecake", name: "Cheesecake", description: "New York style with a biscuit base.", price: "4.50"},
	{uid: "apple-pie", name: "Apple pie", description: "Dutch apple pie with cinnamon and raisins.", price: "4.20"},
}
