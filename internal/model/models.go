package model

// All lists every table the API owns, join rows included, in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Service{},
		&ServiceRelation{},
		&Contact{},
		&Quote{},
		&QuoteServiceRequest{},
		&Portfolio{},
		&PortfolioService{},
		&Blog{},
		&BlogRelation{},
		&BlogService{},
	}
}
