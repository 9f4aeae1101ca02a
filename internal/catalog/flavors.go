package catalog

import (
	"github.com/kayz/codeloom/internal/extract"
	"github.com/kayz/codeloom/internal/synth"
)

// Role instruction text is configuration data, not logic. Each flavor's
// role order mirrors its team workflow, with the coordinator taking the
// first and last turn.

const pathDeclarationRule = `Every file you emit must be preceded by a single-line comment naming its relative path, followed by a fenced code block with the file contents. One file per block.`

func builtinFlavors() []*Flavor {
	return []*Flavor{backendFlavor(), frontendFlavor(), integrationFlavor(), analysisFlavor()}
}

func backendFlavor() *Flavor {
	coordinator := RoleSpec{
		Label: "coordinator",
		Instructions: `You are the code coordinator for a FastAPI backend project. Analyze the requirements, plan the overall architecture, and keep the specialists' output consistent. On your final turn, integrate all components: produce the application entry point, configuration management, requirements.txt and a README. ` + pathDeclarationRule,
	}
	return &Flavor{
		ID:          "backend",
		Description: "FastAPI backend generation from a requirements document",
		Spec: PipelineSpec{
			TurnBudget: 7,
			Roles: []RoleSpec{
				coordinator,
				{
					Label: "model-developer",
					Instructions: `You are a data modeling specialist. Design SQLAlchemy models and Pydantic schemas for the project: table definitions, relationships, constraints and validation rules. Focus exclusively on data models. ` + pathDeclarationRule,
				},
				{
					Label: "api-designer",
					Instructions: `You are a RESTful API design specialist. Define FastAPI endpoints: routes, HTTP methods, request/response models, status codes and authentication flows. Focus exclusively on API design. ` + pathDeclarationRule,
				},
				{
					Label: "business-logic",
					Instructions: `You are a business logic specialist. Implement the service layer: business rules, data processing, validation utilities and error handling, separated from endpoints and models. ` + pathDeclarationRule,
				},
				{
					Label: "integration",
					Instructions: `You are an external integration specialist. Implement clients for third-party services the requirements call for: payment, email, storage, webhooks. Include retry and error handling. ` + pathDeclarationRule,
				},
				{
					Label: "database-migration",
					Instructions: `You are a database migration specialist. Produce database setup scripts and Alembic migration configuration for the models designed so far. ` + pathDeclarationRule,
				},
				coordinator,
			},
		},
		Extract: extract.Rules{
			CommentMarkers: []string{"#"},
			Extensions:     []string{".py", ".txt", ".md", ".yml", ".yaml"},
		},
		Scaffold: synth.Scaffold{
			CombinedPath: "{project}/generated_code.py",
			CommentLead:  "#",
			Files: []synth.ScaffoldFile{
				{Path: "{project}/README.md", Content: "# {project}\n\nGenerated backend code from requirements analysis.\n"},
				{Path: "{project}/requirements.txt", Content: "fastapi==0.116.1\nuvicorn[standard]==0.32.1\nsqlalchemy==2.0.23\nalembic==1.13.1\npydantic==2.10.4\n"},
			},
		},
	}
}

func frontendFlavor() *Flavor {
	coordinator := RoleSpec{
		Label: "coordinator",
		Instructions: `You are the frontend coordinator for an Angular project. Analyze the requirements and plan the component architecture. On your final turn, integrate the specialists' output: app module, routing, package.json and a README. ` + pathDeclarationRule,
	}
	return &Flavor{
		ID:          "frontend",
		Description: "Angular frontend generation from a requirements document",
		Spec: PipelineSpec{
			TurnBudget: 6,
			Roles: []RoleSpec{
				coordinator,
				{
					Label: "component-designer",
					Instructions: `You are an Angular component specialist. Create components with proper TypeScript structure: inputs, outputs, lifecycle hooks and change detection. ` + pathDeclarationRule,
				},
				{
					Label: "service-developer",
					Instructions: `You are an Angular service specialist. Implement injectable services and typed HTTP clients matching the backend API, with RxJS error handling. ` + pathDeclarationRule,
				},
				{
					Label: "ui-implementation",
					Instructions: `You are a UI implementation specialist. Produce templates and SCSS styles using Angular Material, including loading and error states. ` + pathDeclarationRule,
				},
				{
					Label: "state-management",
					Instructions: `You are a state management specialist. Design application state with reactive patterns: stores, selectors and effects where the requirements need them. ` + pathDeclarationRule,
				},
				coordinator,
			},
		},
		Extract: extract.Rules{
			CommentMarkers: []string{"//"},
			Extensions:     []string{".ts", ".html", ".scss", ".json", ".md"},
		},
		Scaffold: synth.Scaffold{
			CombinedPath: "{project}/generated_content.ts",
			CommentLead:  "//",
			Files: []synth.ScaffoldFile{
				{Path: "{project}/README.md", Content: "# {project}\n\nGenerated Angular application from requirements analysis.\n"},
				{Path: "{project}/package.json", Content: "{\n  \"name\": \"{project}\",\n  \"version\": \"0.0.1\",\n  \"scripts\": {\n    \"start\": \"ng serve\",\n    \"build\": \"ng build\"\n  }\n}\n"},
				{Path: "{project}/tsconfig.json", Content: "{\n  \"compilerOptions\": {\n    \"target\": \"ES2022\",\n    \"strict\": true\n  }\n}\n"},
			},
		},
	}
}

func integrationFlavor() *Flavor {
	coordinator := RoleSpec{
		Label: "coordinator",
		Instructions: `You are the integration coordinator. Plan how the generated frontend and backend work together: API contracts, CORS, environment configuration. On your final turn, finalize the integration package and its documentation. ` + pathDeclarationRule,
	}
	return &Flavor{
		ID:          "integration",
		Description: "Frontend/backend integration package generation",
		Spec: PipelineSpec{
			TurnBudget: 5,
			Roles: []RoleSpec{
				coordinator,
				{
					Label: "api-integration",
					Instructions: `You are an API integration specialist. Produce frontend service clients matching the backend endpoints, with TypeScript interfaces mirroring the backend schemas. ` + pathDeclarationRule,
				},
				{
					Label: "auth-integration",
					Instructions: `You are an authentication specialist. Wire the JWT flow end to end: token issue and refresh on the backend, interceptors and guards on the frontend. ` + pathDeclarationRule,
				},
				{
					Label: "deployment",
					Instructions: `You are a deployment specialist. Produce Dockerfiles, docker-compose configuration and environment files so both halves run together locally. ` + pathDeclarationRule,
				},
				coordinator,
			},
		},
		Extract: extract.Rules{
			CommentMarkers: []string{"#", "//"},
			Extensions:     []string{".ts", ".yml", ".yaml", ".sh", ".md", ".json", ".conf", ".txt"},
		},
		Scaffold: synth.Scaffold{
			CombinedPath: "{project}/generated_content.txt",
			CommentLead:  "#",
			Files: []synth.ScaffoldFile{
				{Path: "{project}/README.md", Content: "# {project}\n\nIntegration package for the generated frontend and backend.\n"},
				{Path: "{project}/docker-compose.yml", Content: "version: '3.8'\n\nservices:\n  backend:\n    build: ./backend\n    ports:\n      - \"8000:8000\"\n  frontend:\n    build: ./frontend\n    ports:\n      - \"4200:4200\"\n    depends_on:\n      - backend\n"},
				{Path: "{project}/.env.example", Content: "DATABASE_URL=postgresql://postgres:password@db:5432/app\nCORS_ORIGINS=http://localhost:4200\n"},
			},
		},
	}
}

func analysisFlavor() *Flavor {
	return &Flavor{
		ID:          "analysis",
		Description: "Requirements analysis producing frontend and backend SRDs",
		Spec: PipelineSpec{
			TurnBudget: 3,
			Roles: []RoleSpec{
				{
					Label: "analyst",
					Instructions: `You are a requirements analyst. Read the project document and produce a structured analysis: goals, user roles, functional and non-functional requirements, open questions. Write it as srd/analysis.md. ` + pathDeclarationRule,
				},
				{
					Label: "frontend-specialist",
					Instructions: `You are a frontend requirements specialist. From the analysis so far, write the frontend Software Requirements Document: views, navigation, validation and UX constraints. Write it as srd/frontend_srd.md. ` + pathDeclarationRule,
				},
				{
					Label: "backend-specialist",
					Instructions: `You are a backend requirements specialist. From the analysis so far, write the backend Software Requirements Document: entities, API surface, business rules, persistence and security constraints. Write it as srd/backend_srd.md. ` + pathDeclarationRule,
				},
			},
		},
		Extract: extract.Rules{
			CommentMarkers: []string{"#"},
			Extensions:     []string{".md", ".txt"},
		},
		Scaffold: synth.Scaffold{
			CombinedPath: "{project}/generated_content.md",
			CommentLead:  "#",
			Files: []synth.ScaffoldFile{
				{Path: "{project}/README.md", Content: "# {project}\n\nRequirements analysis output.\n"},
				{Path: "{project}/analysis.yml", Content: "project: {project}\nstatus: degraded\n"},
			},
		},
	}
}
