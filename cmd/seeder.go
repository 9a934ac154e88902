package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	leadDatamodel "github.com/salesloop/crm-backend/internal/core/datamodel/lead"
	profileDatamodel "github.com/salesloop/crm-backend/internal/core/datamodel/profile"
	roleDatamodel "github.com/salesloop/crm-backend/internal/core/datamodel/role"
	userDatamodel "github.com/salesloop/crm-backend/internal/core/datamodel/user"
)

const demoTenant = "acme"

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed system role and profile templates plus a demo tenant",
	Long:  `Seed the system role/profile templates and a demo tenant with a small user hierarchy and sample leads.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		db, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: sqlDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to open gorm connection: %v", err)
		}

		if clearData {
			clearDemoTenant(db)
		}

		seedSystemRoles(db)
		seedSystemProfiles(db)
		seedDemoTenant(db)

		fmt.Println("Seeding complete")
	},
}

func clearDemoTenant(db *gorm.DB) {
	db.Where("tenant_id = ?", demoTenant).Delete(&leadDatamodel.Lead{})
	db.Where("tenant_id = ?", demoTenant).Delete(&userDatamodel.User{})
	db.Where("tenant_id = ?", demoTenant).Delete(&roleDatamodel.Role{})
	db.Where("tenant_id = ?", demoTenant).Delete(&profileDatamodel.Profile{})
	fmt.Println("Cleared demo tenant data:", demoTenant)
}

// systemRoleTemplates are the tenant-independent role templates cloned at
// tenant onboarding. Levels and parent links are filled in per tenant.
func systemRoleTemplates() []roleDatamodel.Role {
	return []roleDatamodel.Role{
		{
			RoleID:       "role-sys-ceo",
			Name:         "CEO",
			Description:  "Full organization visibility",
			IsSystemRole: true,
			Permissions: roleDatamodel.RolePermissions{
				DataVisibility:    roleDatamodel.VisibilityAll,
				CanManageUsers:    true,
				CanManageRoles:    true,
				CanManageProfiles: true,
				CanViewSetup:      true,
				CanManageSharing:  true,
				CanViewAllData:    true,
				CanModifyAllData:  true,
				CanViewAuditLog:   true,
				CanExportData:     true,
				CanImportData:     true,
			},
			IsActive: true,
		},
		{
			RoleID:       "role-sys-manager",
			Name:         "Manager",
			Description:  "Sees own records and the team below",
			IsSystemRole: true,
			Permissions: roleDatamodel.RolePermissions{
				DataVisibility: roleDatamodel.VisibilitySubordinates,
				CanManageUsers: true,
				CanViewSetup:   true,
				CanExportData:  true,
			},
			IsActive: true,
		},
		{
			RoleID:       "role-sys-sales-rep",
			Name:         "Sales Rep",
			Description:  "Sees own records only",
			IsSystemRole: true,
			Permissions: roleDatamodel.RolePermissions{
				DataVisibility: roleDatamodel.VisibilityOwn,
			},
			IsActive: true,
		},
		{
			RoleID:       "role-sys-read-only",
			Name:         "Read Only",
			Description:  "No administrative grants",
			IsSystemRole: true,
			Permissions: roleDatamodel.RolePermissions{
				DataVisibility: roleDatamodel.VisibilityOwn,
			},
			IsActive: true,
		},
	}
}

func fullCRUD(object string) profileDatamodel.ObjectPermission {
	return profileDatamodel.ObjectPermission{
		ObjectName: object,
		CanCreate:  true, CanRead: true, CanEdit: true, CanDelete: true,
		CanViewAll: true, CanModifyAll: true,
	}
}

func readOnly(object string) profileDatamodel.ObjectPermission {
	return profileDatamodel.ObjectPermission{ObjectName: object, CanRead: true}
}

var crmObjects = []string{"LEAD", "CONTACT", "ACCOUNT", "OPPORTUNITY", "PRODUCT", "ACTIVITY", "PROPOSAL"}

func systemProfileTemplates() []profileDatamodel.Profile {
	var adminPerms, readOnlyPerms []profileDatamodel.ObjectPermission
	for _, obj := range crmObjects {
		adminPerms = append(adminPerms, fullCRUD(obj))
		readOnlyPerms = append(readOnlyPerms, readOnly(obj))
	}

	standardPerms := []profileDatamodel.ObjectPermission{
		{ObjectName: "LEAD", CanCreate: true, CanRead: true, CanEdit: true},
		{ObjectName: "CONTACT", CanCreate: true, CanRead: true, CanEdit: true},
		{ObjectName: "ACCOUNT", CanCreate: true, CanRead: true, CanEdit: true},
		{ObjectName: "OPPORTUNITY", CanCreate: true, CanRead: true, CanEdit: true},
		{ObjectName: "ACTIVITY", CanCreate: true, CanRead: true, CanEdit: true, CanDelete: true},
	}

	salesRepPerms := []profileDatamodel.ObjectPermission{
		{ObjectName: "LEAD", CanCreate: true, CanRead: true, CanEdit: true, CanDelete: true},
		{ObjectName: "CONTACT", CanCreate: true, CanRead: true, CanEdit: true},
		{ObjectName: "ACTIVITY", CanCreate: true, CanRead: true, CanEdit: true, CanDelete: true},
	}

	return []profileDatamodel.Profile{
		{
			ProfileID:         "profile-sys-admin",
			Name:              "System Administrator",
			IsSystemProfile:   true,
			ObjectPermissions: adminPerms,
			SystemPerms: profileDatamodel.SystemPermissions{
				CanAccessAPI: true, CanAccessReports: true, CanAccessDashboards: true,
				CanBulkUpdate: true, CanBulkDelete: true, CanMassEmail: true,
			},
			IsActive: true,
		},
		{
			ProfileID:         "profile-sys-standard",
			Name:              "Standard User",
			IsSystemProfile:   true,
			ObjectPermissions: standardPerms,
			SystemPerms: profileDatamodel.SystemPermissions{
				CanAccessAPI: true, CanAccessReports: true, CanAccessDashboards: true,
			},
			IsActive: true,
		},
		{
			ProfileID:         "profile-sys-sales-rep",
			Name:              "Sales Rep",
			IsSystemProfile:   true,
			ObjectPermissions: salesRepPerms,
			FieldPermissions: []profileDatamodel.FieldPermission{
				{ObjectName: "LEAD", FieldName: "annual_revenue", CanRead: false, CanEdit: false},
			},
			SystemPerms: profileDatamodel.SystemPermissions{CanAccessAPI: true},
			IsActive:    true,
		},
		{
			ProfileID:         "profile-sys-read-only",
			Name:              "Read Only",
			IsSystemProfile:   true,
			ObjectPermissions: readOnlyPerms,
			IsActive:          true,
		},
	}
}

func seedSystemRoles(db *gorm.DB) {
	for _, tmpl := range systemRoleTemplates() {
		var existing roleDatamodel.Role
		if err := db.Where("role_id = ?", tmpl.RoleID).First(&existing).Error; err == nil {
			continue
		}
		if err := db.Create(&tmpl).Error; err != nil {
			log.Fatalf("failed to seed system role %s: %v", tmpl.RoleID, err)
		}
		fmt.Println("Seeded system role:", tmpl.RoleID)
	}
}

func seedSystemProfiles(db *gorm.DB) {
	for _, tmpl := range systemProfileTemplates() {
		var existing profileDatamodel.Profile
		if err := db.Where("profile_id = ?", tmpl.ProfileID).First(&existing).Error; err == nil {
			continue
		}
		if err := db.Create(&tmpl).Error; err != nil {
			log.Fatalf("failed to seed system profile %s: %v", tmpl.ProfileID, err)
		}
		fmt.Println("Seeded system profile:", tmpl.ProfileID)
	}
}

// seedDemoTenant clones the system templates into the demo tenant and builds
// a three-level user hierarchy: CEO -> Manager -> two reps.
func seedDemoTenant(db *gorm.DB) {
	tenant := demoTenant

	var existing roleDatamodel.Role
	if err := db.Where("tenant_id = ? AND role_id = ?", tenant, "role-acme-ceo").First(&existing).Error; err == nil {
		fmt.Println("Demo tenant already seeded:", tenant)
		return
	}

	ceoID := "role-acme-ceo"
	mgrID := "role-acme-manager"
	repID := "role-acme-sales-rep"

	roles := []roleDatamodel.Role{}
	for _, tmpl := range systemRoleTemplates() {
		clone := tmpl
		clone.ID = 0
		clone.TenantID = &tenant
		clone.IsSystemRole = false
		switch tmpl.RoleID {
		case "role-sys-ceo":
			clone.RoleID = ceoID
			clone.Level = 0
			clone.ChildRoleIDs = []string{mgrID}
		case "role-sys-manager":
			clone.RoleID = mgrID
			clone.ParentRoleID = &ceoID
			clone.ParentRoleName = "CEO"
			clone.Level = 1
			clone.ChildRoleIDs = []string{repID}
		case "role-sys-sales-rep":
			clone.RoleID = repID
			clone.ParentRoleID = &mgrID
			clone.ParentRoleName = "Manager"
			clone.Level = 2
		case "role-sys-read-only":
			clone.RoleID = "role-acme-read-only"
			clone.ParentRoleID = &ceoID
			clone.ParentRoleName = "CEO"
			clone.Level = 1
		}
		roles = append(roles, clone)
	}
	for i := range roles {
		if err := db.Create(&roles[i]).Error; err != nil {
			log.Fatalf("failed to seed tenant role %s: %v", roles[i].RoleID, err)
		}
	}

	profileIDs := map[string]string{
		"profile-sys-admin":     "profile-acme-admin",
		"profile-sys-standard":  "profile-acme-standard",
		"profile-sys-sales-rep": "profile-acme-sales-rep",
		"profile-sys-read-only": "profile-acme-read-only",
	}
	for _, tmpl := range systemProfileTemplates() {
		clone := tmpl
		clone.ID = 0
		clone.TenantID = &tenant
		clone.IsSystemProfile = false
		clone.ProfileID = profileIDs[tmpl.ProfileID]
		if err := db.Create(&clone).Error; err != nil {
			log.Fatalf("failed to seed tenant profile %s: %v", clone.ProfileID, err)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("failed to hash seed password: %v", err)
	}

	adminProfile := profileIDs["profile-sys-admin"]
	standardProfile := profileIDs["profile-sys-standard"]
	repProfile := profileIDs["profile-sys-sales-rep"]

	ceo := userDatamodel.User{
		TenantID: tenant, Email: "ceo@acme.test", Name: "Casey CEO",
		PasswordHash: string(hash), RoleID: &ceoID, ProfileID: &adminProfile,
		Status: userDatamodel.StatusActive,
	}
	if err := db.Create(&ceo).Error; err != nil {
		log.Fatalf("failed to seed ceo user: %v", err)
	}

	manager := userDatamodel.User{
		TenantID: tenant, Email: "manager@acme.test", Name: "Morgan Manager",
		PasswordHash: string(hash), RoleID: &mgrID, ProfileID: &standardProfile,
		ManagerID: &ceo.ID, Status: userDatamodel.StatusActive,
	}
	if err := db.Create(&manager).Error; err != nil {
		log.Fatalf("failed to seed manager user: %v", err)
	}

	reps := []userDatamodel.User{
		{
			TenantID: tenant, Email: "rep1@acme.test", Name: "Riley Rep",
			PasswordHash: string(hash), RoleID: &repID, ProfileID: &repProfile,
			ManagerID: &manager.ID, Status: userDatamodel.StatusActive,
		},
		{
			TenantID: tenant, Email: "rep2@acme.test", Name: "Robin Rep",
			PasswordHash: string(hash), RoleID: &repID, ProfileID: &repProfile,
			ManagerID: &manager.ID, Status: userDatamodel.StatusActive,
		},
	}
	for i := range reps {
		if err := db.Create(&reps[i]).Error; err != nil {
			log.Fatalf("failed to seed rep user: %v", err)
		}
	}

	leads := []leadDatamodel.Lead{
		{
			LeadID: "lead-acme-1", TenantID: tenant, OwnerID: reps[0].ID,
			FirstName: "Ada", LastName: "Lovell", Company: "Initech",
			Email: "ada@initech.test", Status: leadDatamodel.StatusNew, Source: "WEB",
		},
		{
			LeadID: "lead-acme-2", TenantID: tenant, OwnerID: reps[1].ID,
			FirstName: "Grace", LastName: "Hopper", Company: "Globex",
			Email: "grace@globex.test", Status: leadDatamodel.StatusContacted, Source: "REFERRAL",
		},
	}
	for i := range leads {
		if err := db.Create(&leads[i]).Error; err != nil {
			log.Fatalf("failed to seed lead: %v", err)
		}
	}

	fmt.Println("Seeded demo tenant:", tenant)
}
