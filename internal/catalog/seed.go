package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/dmitrymomot/academy/pkg/i18n"
)

// SeedCourses returns the demo course list.
func SeedCourses() Courses {
	return Courses{
		{
			ID:   1,
			Slug: "frontend-development",
			Title: i18n.Text{
				"uz": "Frontend dasturlash",
				"ru": "Frontend-разработка",
				"en": "Frontend Development",
			},
			Description: i18n.Text{
				"uz": "HTML, CSS, JavaScript va React asoslari.",
				"ru": "Основы HTML, CSS, JavaScript и React.",
				"en": "HTML, CSS, JavaScript and React fundamentals.",
			},
			Price:    decimal.NewFromInt(1_200_000),
			Image:    "/images/courses/frontend.jpg",
			Level:    LevelBeginner,
			Duration: "6 months",
			Teacher:  "Jasur Toshmatov",
		},
		{
			ID:   2,
			Slug: "backend-go",
			Title: i18n.Text{
				"uz": "Go tilida backend",
				"ru": "Backend на Go",
				"en": "Backend with Go",
			},
			Description: i18n.Text{
				"uz": "HTTP servislar, ma'lumotlar bazasi va deploy.",
				"ru": "HTTP-сервисы, базы данных и деплой.",
				"en": "HTTP services, databases and deployment.",
			},
			Price:    decimal.NewFromInt(1_500_000),
			Image:    "/images/courses/backend.jpg",
			Level:    LevelIntermediate,
			Duration: "8 months",
			Teacher:  "Jasur Toshmatov",
		},
		{
			ID:   3,
			Slug: "ui-ux-design",
			Title: i18n.Text{
				"uz": "UI/UX dizayn",
				"ru": "UI/UX-дизайн",
				"en": "UI/UX Design",
			},
			Description: i18n.Text{
				"uz": "Figma, prototiplash va foydalanuvchi tadqiqotlari.",
				"ru": "Figma, прототипирование и исследования пользователей.",
				"en": "Figma, prototyping and user research.",
			},
			Price:    decimal.NewFromInt(900_000),
			Image:    "/images/courses/design.jpg",
			Level:    LevelBeginner,
			Duration: "4 months",
			Teacher:  "Malika Yusupova",
		},
		{
			ID:   4,
			Slug: "data-science",
			Title: i18n.Text{
				"uz": "Data Science",
				"ru": "Data Science",
				"en": "Data Science",
			},
			Description: i18n.Text{
				"uz": "Python, statistika va mashinaviy o'qitish.",
				"ru": "Python, статистика и машинное обучение.",
				"en": "Python, statistics and machine learning.",
			},
			Price:    decimal.NewFromInt(1_800_000),
			Image:    "/images/courses/data.jpg",
			Level:    LevelAdvanced,
			Duration: "9 months",
			Teacher:  "Sardor Aliyev",
		},
	}
}

// SeedJobs returns the demo vacancies.
func SeedJobs() []Job {
	return []Job{
		{
			ID:         1,
			Title:      i18n.Text{"uz": "Frontend o'qituvchisi", "ru": "Преподаватель Frontend", "en": "Frontend Instructor"},
			Location:   "Tashkent",
			Employment: "full-time",
			Salary:     "negotiable",
			Requirements: []i18n.Text{
				{"uz": "3 yillik tajriba", "ru": "Опыт от 3 лет", "en": "3+ years of experience"},
				{"uz": "React bilimi", "ru": "Знание React", "en": "React knowledge"},
			},
		},
		{
			ID:         2,
			Title:      i18n.Text{"uz": "O'quv markazi menejeri", "ru": "Менеджер учебного центра", "en": "Learning Center Manager"},
			Location:   "Tashkent",
			Employment: "full-time",
			Salary:     "negotiable",
			Requirements: []i18n.Text{
				{"uz": "Ta'lim sohasida tajriba", "ru": "Опыт в сфере образования", "en": "Background in education"},
			},
		},
	}
}
