// Package seed creates the first administrator and the default service catalog.
// Every step is idempotent.
package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"sphinx_backend/internal/model"
	"sphinx_backend/internal/service"
	"sphinx_backend/pkg/utils/slugify"
)

type defaultService struct {
	Name        string
	Category    string
	Icon        string
	Short       string
	Description string
	Order       int
	Featured    bool
}

var defaultServices = []defaultService{
	{"Landscape Design", "design", "fa-leaf", "Custom plans for your outdoor space.",
		"Site analysis, concept drawings and planting plans tailored to the way you use your yard.", 1, true},
	{"Hardscaping", "hardscaping", "fa-home", "Patios, walkways and retaining walls.",
		"Paver patios, natural stone walkways, retaining walls and outdoor kitchens built to last.", 2, true},
	{"Planting & Gardens", "softscaping", "fa-tree", "Trees, shrubs and seasonal color.",
		"Plant selection and installation for beds, borders and native gardens.", 3, true},
	{"Irrigation Systems", "irrigation", "fa-water", "Efficient watering, installed and tuned.",
		"Drip and spray irrigation design, installation, smart controllers and seasonal start-up.", 4, false},
	{"Lawn Care", "maintenance", "fa-seedling", "Mowing, feeding and seasonal cleanups.",
		"Weekly mowing, fertilization, aeration and spring and fall cleanups.", 5, false},
	{"Outdoor Lighting", "lighting", "fa-sun", "Low-voltage landscape lighting.",
		"Path, accent and security lighting designed to show off your landscape after dark.", 6, false},
}

// Admin creates the administrator account when no user has that email yet.
func Admin(ctx context.Context, db *gorm.DB, email, password string, log *logrus.Entry) (*model.User, bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || len(password) < 6 {
		return nil, false, fmt.Errorf("admin email and a password of at least 6 characters are required")
	}

	var existing model.User
	err := db.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if err == nil {
		log.WithField("email", email).Info("admin already exists")
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("find admin: %w", err)
	}

	hashed, err := service.HashPassword(password)
	if err != nil {
		return nil, false, err
	}
	admin := &model.User{Name: "Administrator", Email: email, Password: hashed, Role: model.RoleAdmin}
	if err := db.WithContext(ctx).Create(admin).Error; err != nil {
		return nil, false, fmt.Errorf("create admin: %w", err)
	}
	log.WithField("email", email).Info("admin created")
	return admin, true, nil
}

// Services adds the default catalog entries that are missing and returns how many were created.
func Services(ctx context.Context, db *gorm.DB, catalog *service.CatalogService, log *logrus.Entry) (int, error) {
	created := 0
	for _, d := range defaultServices {
		var count int64
		if err := db.WithContext(ctx).Model(&model.Service{}).Where("slug = ?", slugify.Make(d.Name)).Count(&count).Error; err != nil {
			return created, fmt.Errorf("check service %s: %w", d.Name, err)
		}
		if count > 0 {
			continue
		}

		name, category, icon, short, desc := d.Name, d.Category, d.Icon, d.Short, d.Description
		order, featured := d.Order, d.Featured
		_, err := catalog.Create(ctx, &model.ServiceInput{
			Name:             &name,
			Category:         &category,
			Icon:             &icon,
			ShortDescription: &short,
			Description:      &desc,
			Order:            &order,
			Featured:         &featured,
		})
		if err != nil {
			return created, fmt.Errorf("seed service %s: %w", d.Name, err)
		}
		created++
	}
	log.WithField("created", created).Info("services seeded")
	return created, nil
}
