package domain

import "strings"

// Store is a merchant storefront and its ordered product list.
type Store struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	OwnerID   string      `json:"owner_id"`
	OwnerName string      `json:"owner_name"`
	Address   string      `json:"address"`
	Location  Coordinates `json:"location"`
	Phone     string      `json:"phone"`
	Image     string      `json:"image"`
	Rating    float64     `json:"rating"`
	Tags      []string    `json:"tags"`
	Products  []Product   `json:"products"`
}

// Clone returns a deep copy of s.
func (s Store) Clone() Store {
	s.Tags = cloneStrings(s.Tags)
	if s.Products != nil {
		products := make([]Product, len(s.Products))
		for i, p := range s.Products {
			products[i] = p.Clone()
		}
		s.Products = products
	}
	return s
}

// FindProduct returns the product with id, or false.
func (s Store) FindProduct(id string) (Product, bool) {
	for _, p := range s.Products {
		if p.ID == id {
			return p.Clone(), true
		}
	}
	return Product{}, false
}

// StorePatch is a partial store update. Nil fields are left unchanged.
type StorePatch struct {
	Name      *string      `json:"name,omitempty"`
	OwnerName *string      `json:"owner_name,omitempty"`
	Address   *string      `json:"address,omitempty"`
	Location  *Coordinates `json:"location,omitempty"`
	Phone     *string      `json:"phone,omitempty"`
	Image     *string      `json:"image,omitempty"`
	Rating    *Number      `json:"rating,omitempty"`
	Tags      []string     `json:"tags,omitempty"`
}

// Apply returns a copy of s with the patch applied.
func (sp StorePatch) Apply(s Store) Store {
	out := s.Clone()
	if sp.Name != nil {
		out.Name = *sp.Name
	}
	if sp.OwnerName != nil {
		out.OwnerName = *sp.OwnerName
	}
	if sp.Address != nil {
		out.Address = *sp.Address
	}
	if sp.Location != nil {
		out.Location = *sp.Location
	}
	if sp.Phone != nil {
		out.Phone = *sp.Phone
	}
	if sp.Image != nil {
		out.Image = *sp.Image
	}
	if sp.Rating != nil {
		out.Rating = sp.Rating.Float()
	}
	if sp.Tags != nil {
		out.Tags = cloneStrings(sp.Tags)
	}
	return out
}

// CloneStores deep-copies a catalog.
func CloneStores(stores []Store) []Store {
	if stores == nil {
		return nil
	}
	out := make([]Store, len(stores))
	for i, s := range stores {
		out[i] = s.Clone()
	}
	return out
}

// FindStore returns a copy of the store with id, or nil when there is none.
func FindStore(stores []Store, id string) *Store {
	for _, s := range stores {
		if s.ID == id {
			c := s.Clone()
			return &c
		}
	}
	return nil
}

// SearchStores returns the stores whose name or any tag contains term,
// case-insensitively. An empty term matches every store.
func SearchStores(stores []Store, term string) []Store {
	needle := strings.ToLower(term)
	out := make([]Store, 0, len(stores))
	for _, s := range stores {
		if strings.Contains(strings.ToLower(s.Name), needle) || anyContains(s.Tags, needle) {
			out = append(out, s.Clone())
		}
	}
	return out
}

func anyContains(values []string, needle string) bool {
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), needle) {
			return true
		}
	}
	return false
}

// MerchantStore returns the store owned by user, falling back to the first
// store. It returns nil only for an empty catalog.
func MerchantStore(stores []Store, user User) *Store {
	for _, s := range stores {
		if s.OwnerID == user.ID {
			c := s.Clone()
			return &c
		}
	}
	if len(stores) == 0 {
		return nil
	}
	c := stores[0].Clone()
	return &c
}

// UpdateStore returns a new catalog with patch applied to store storeID.
// The bool is false when the store does not exist.
func UpdateStore(stores []Store, storeID string, patch StorePatch) ([]Store, bool) {
	return mapStore(stores, storeID, patch.Apply)
}

// UpdateProduct returns a new catalog with patch applied to the product
// (storeID, productID).
func UpdateProduct(stores []Store, storeID, productID string, patch ProductPatch) ([]Store, bool) {
	found := false
	out, ok := mapStore(stores, storeID, func(s Store) Store {
		for i, p := range s.Products {
			if p.ID == productID {
				s.Products[i] = patch.Apply(p)
				found = true
			}
		}
		return s
	})
	return out, ok && found
}

// AddProduct returns a new catalog with p appended to store storeID.
func AddProduct(stores []Store, storeID string, p Product) ([]Store, bool) {
	return mapStore(stores, storeID, func(s Store) Store {
		s.Products = append(s.Products, p.Clone())
		return s
	})
}

// mapStore deep-copies stores and replaces the store with id by fn's result.
// fn receives a private copy it may mutate.
func mapStore(stores []Store, id string, fn func(Store) Store) ([]Store, bool) {
	out := CloneStores(stores)
	found := false
	for i := range out {
		if out[i].ID == id {
			out[i] = fn(out[i])
			found = true
		}
	}
	return out, found
}
