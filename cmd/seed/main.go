package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

// ── helpers ──────────────────────────────────────────────────────────────────

func newID() string { return uuid.New().String() }

func daysAgo(d int) time.Time {
	return time.Now().UTC().AddDate(0, 0, -d)
}

func randBetween(min, max int) int {
	return min + rand.Intn(max-min+1)
}

func must(err error, msg string) {
	if err != nil {
		log.Fatalf("%s: %v", msg, err)
	}
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

// ── main ─────────────────────────────────────────────────────────────────────

func main() {
	_ = godotenv.Load()

	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		envOr("DB_HOST", "localhost"),
		envOr("DB_PORT", "5432"),
		envOr("DB_USER", "talentpipe"),
		envOr("DB_PASSWORD", "talentpipe"),
		envOr("DB_NAME", "talentpipe"),
		envOr("DB_SSL_MODE", "disable"),
	)

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("ping: %v", err)
	}
	fmt.Println("connected to database")

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatalf("begin tx: %v", err)
	}
	defer tx.Rollback(ctx)

	// ── clean up previous seed data ──────────────────────────────────────
	const seedMarker = "seed-job-"
	_, _ = tx.Exec(ctx, `DELETE FROM job_requirement WHERE title LIKE $1`, seedMarker+"%")
	_, _ = tx.Exec(ctx, `DELETE FROM candidate WHERE resume_filename LIKE 'seed-%'`)
	fmt.Println("cleaned previous seed data")

	// ── 1. job requirements ───────────────────────────────────────────────
	type jobReq struct {
		id, title, description, requiredSkills, requiredEducation, domainReqs string
		minYears, maxYears                                                    float64
		active                                                                bool
	}
	jobs := []jobReq{
		{newID(), seedMarker + "Senior Backend Engineer",
			"Own the core services of a high-throughput payments platform written in Go.",
			"Go, PostgreSQL, gRPC, distributed systems, Kubernetes",
			"BSc Computer Science or equivalent experience",
			"fintech, payments processing", 4, 10, true},
		{newID(), seedMarker + "Machine Learning Engineer",
			"Build and ship retrieval-augmented generation features for a recruiting product.",
			"Python, PyTorch, embeddings, vector databases, LLM evaluation",
			"MSc or PhD in Computer Science, Machine Learning, or related field",
			"applied machine learning, NLP", 3, 8, true},
		{newID(), seedMarker + "Full-Stack Developer",
			"Build candidate-facing and recruiter-facing web surfaces on top of the core pipeline.",
			"TypeScript, React, Node.js, REST APIs, SQL",
			"BSc Computer Science or bootcamp + 2 years experience",
			"recruiting software, SaaS", 2, 6, true},
		{newID(), seedMarker + "Platform / DevOps Engineer",
			"Operate the job queue, worker fleet, and observability stack that keeps the pipeline healthy.",
			"Kubernetes, Terraform, Prometheus, Go, CI/CD",
			"BSc Computer Science or equivalent experience",
			"platform engineering, SRE", 3, 9, true},
		{newID(), seedMarker + "Developer Relations Engineer",
			"Grow the open developer community around the platform's public API.",
			"public speaking, technical writing, JavaScript, community management",
			"BSc in any technical field or equivalent experience",
			"developer relations, community", 2, 7, true},
		{newID(), seedMarker + "Staff Software Engineer (archived)",
			"Cross-cutting technical leadership across the matching engine and enrichment services.",
			"Go, system design, mentoring, distributed systems",
			"BSc Computer Science or equivalent experience",
			"recruiting software", 6, 15, false},
	}
	for _, j := range jobs {
		_, err = tx.Exec(ctx,
			`INSERT INTO job_requirement (id, title, description, required_skills, required_education, domain_requirements, min_years, max_years, active, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)`,
			j.id, j.title, j.description, j.requiredSkills, j.requiredEducation, j.domainReqs, j.minYears, j.maxYears, j.active, daysAgo(randBetween(30, 90)),
		)
		must(err, "create job requirement "+j.title)
	}
	fmt.Printf("created %d job requirements\n", len(jobs))

	// ── 2. candidates ──────────────────────────────────────────────────────
	type candidateDef struct {
		id, name, email, phone, skills, domainKnowledge, academicBackground string
		yearsOfExperience                                                   float64
		resumeFilename                                                      string
		resumeText                                                          string
	}
	candidates := []candidateDef{
		{newID(), "Priya Natarajan", "priya.natarajan@example.com", "+1-415-555-0142",
			"Go, PostgreSQL, gRPC, Kubernetes, distributed systems",
			"payments processing, high-throughput backends",
			"BSc Computer Science, UC Berkeley",
			6, "seed-priya-natarajan.pdf",
			"Experience\nSix years building backend services in Go for payment processors, including a rewrite of a settlement engine handling 40M transactions/day.\n\nSkills\nGo, PostgreSQL, gRPC, Kubernetes, distributed systems, Kafka.\n\nEducation\nBSc in Computer Science, UC Berkeley."},
		{newID(), "Marcus Webb", "marcus.webb@example.com", "+1-206-555-0193",
			"Python, PyTorch, embeddings, vector search, NLP",
			"applied machine learning, retrieval-augmented generation",
			"MSc Machine Learning, University of Washington",
			4, "seed-marcus-webb.docx",
			"Experience\nFour years applying transformer-based models to search ranking and retrieval-augmented generation pipelines.\n\nSkills\nPython, PyTorch, embeddings, vector databases, evaluation harnesses.\n\nEducation\nMSc in Machine Learning, University of Washington."},
		{newID(), "Sofia Alvarez", "sofia.alvarez@example.com", "+34-600-555-221",
			"TypeScript, React, Node.js, REST APIs, SQL",
			"SaaS product development",
			"BSc Computer Science, Universidad Politecnica de Madrid",
			3, "seed-sofia-alvarez.pdf",
			"Experience\nThree years building recruiter-facing dashboards and candidate portals in React and Node.js.\n\nSkills\nTypeScript, React, Node.js, REST APIs, SQL, GraphQL.\n\nEducation\nBSc in Computer Science, Universidad Politecnica de Madrid."},
		{newID(), "Daniel Kim", "daniel.kim@example.com", "+82-10-5555-0176",
			"Kubernetes, Terraform, Prometheus, Go, CI/CD",
			"platform engineering, site reliability",
			"BSc Computer Engineering, Seoul National University",
			5, "seed-daniel-kim.pdf",
			"Experience\nFive years on platform and SRE teams, operating Kubernetes fleets and worker schedulers for data pipelines.\n\nSkills\nKubernetes, Terraform, Prometheus, Go, CI/CD, on-call leadership.\n\nEducation\nBSc in Computer Engineering, Seoul National University."},
		{newID(), "Unknown", "", "",
			"", "", "", 0, "seed-corrupt-upload.doc", ""},
	}
	for _, c := range candidates {
		_, err = tx.Exec(ctx,
			`INSERT INTO candidate (id, name, email, phone, skills, domain_knowledge, academic_background, years_of_experience, resume_bytes, resume_filename, resume_text, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)`,
			c.id, c.name, c.email, c.phone, c.skills, c.domainKnowledge, c.academicBackground, c.yearsOfExperience,
			[]byte(c.resumeText), c.resumeFilename, c.resumeText, daysAgo(randBetween(5, 60)),
		)
		must(err, "create candidate "+c.name)
	}
	fmt.Printf("created %d candidates\n", len(candidates))

	// ── 3. external profiles ────────────────────────────────────────────
	type profileDef struct {
		candidateIdx int
		source       string
		status       string
		profileURL   string
		displayName  string
		bio          string
		company      string
		location     string
		publicRepos  int
		followers    int
		summary      string
	}
	profiles := []profileDef{
		{0, "GITHUB", "SUCCESS", "https://github.com/pnatarajan", "Priya Natarajan",
			"Backend engineer working on payments infrastructure.", "TechNova", "San Francisco, CA",
			34, 210, "GITHUB: @pnatarajan — 34 repos, 210 followers. Top projects: settlement-engine, go-ledger, grpc-toolkit."},
		{1, "GITHUB", "SUCCESS", "https://github.com/mwebb-ml", "Marcus Webb",
			"ML engineer, RAG and embeddings.", "Quantum Labs", "Seattle, WA",
			19, 140, "GITHUB: @mwebb-ml — 19 repos, 140 followers. Top projects: rag-eval, embedding-bench."},
		{2, "LINKEDIN", "NOT_AVAILABLE", "https://www.linkedin.com/in/sofia-alvarez", "", "", "", "", 0, 0, ""},
		{3, "TWITTER", "NOT_FOUND", "", "", "", "", "", 0, 0, ""},
	}
	for _, p := range profiles {
		var lastFetchedAt *time.Time
		t := daysAgo(randBetween(1, 14))
		if p.status == "SUCCESS" {
			lastFetchedAt = &t
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO candidate_external_profile (id, candidate_id, source, status, profile_url, display_name, bio, company, location, public_repos, followers, repositories_summary, enriched_summary, last_fetched_at, error_message, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, '', $12, $13, '', $14, $14)`,
			newID(), candidates[p.candidateIdx].id, p.source, p.status, p.profileURL, p.displayName, p.bio, p.company, p.location,
			p.publicRepos, p.followers, p.summary, lastFetchedAt, daysAgo(randBetween(1, 14)),
		)
		must(err, "create external profile for "+candidates[p.candidateIdx].name)
	}
	fmt.Printf("created %d external profiles\n", len(profiles))

	// ── 4. candidate matches ─────────────────────────────────────────────
	type matchDef struct {
		candidateIdx, jobIdx                     int
		matchScore, skillsScore, experienceScore int
		educationScore, domainScore              int
		explanation, recommendation              string
		isShortlisted, isSelected                bool
	}
	matches := []matchDef{
		{0, 0, 88, 90, 85, 80, 92, "Strong Go and distributed-systems background directly matches the payments platform's needs.", "Advance to technical interview.", true, false},
		{1, 1, 91, 95, 85, 90, 88, "Deep embeddings and RAG experience aligns closely with the role's core responsibilities.", "Fast-track to onsite.", true, true},
		{2, 2, 76, 80, 65, 75, 70, "Solid full-stack fundamentals; limited SaaS-scale experience relative to senior candidates.", "Consider for mid-level full-stack opening.", true, false},
		{3, 3, 84, 85, 80, 78, 86, "Strong platform/SRE background with hands-on Kubernetes and Terraform experience.", "Advance to technical interview.", true, false},
		{0, 3, 58, 55, 60, 50, 45, "Backend-heavy profile but limited direct platform/SRE tooling exposure.", "Not an immediate fit for this requisition.", false, false},
	}
	for _, m := range matches {
		_, err = tx.Exec(ctx,
			`INSERT INTO candidate_match (id, candidate_id, job_id, match_score, skills_score, experience_score, education_score, domain_score, explanation, strengths, gaps, recommendation, is_shortlisted, is_selected, recruiter_note, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, '[]', '[]', $10, $11, $12, '', $13, $13)`,
			newID(), candidates[m.candidateIdx].id, jobs[m.jobIdx].id, m.matchScore, m.skillsScore, m.experienceScore,
			m.educationScore, m.domainScore, m.explanation, m.recommendation, m.isShortlisted, m.isSelected, daysAgo(randBetween(1, 10)),
		)
		must(err, "create candidate match")
	}
	fmt.Printf("created %d candidate matches\n", len(matches))

	// ── commit ───────────────────────────────────────────────────────────
	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("commit: %v", err)
	}

	fmt.Println("\nseed completed successfully")
}
