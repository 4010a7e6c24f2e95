package portfolio

// Default returns the built-in portfolio content. Each call returns a fresh copy.
func Default() *Data {
	return &Data{
		Profile: Profile{
			Name:     "Nitin Jangid",
			Role:     "Full Stack Engineer",
			About:    "Full Stack Engineer specializing in building high-performance web applications and scalable backend systems. Proficient in the MERN stack, Next.js, NestJS, and Microservices architecture. I thrive on transforming complex requirements into clean, maintainable code and delivering seamless user experiences. Driven by curiosity and a commitment to continuous learning, I bring a problem-solving mindset and attention to detail to every project.",
			Location: "Pune, India",
			Email:    "dev.nitinjangid@gmail.com",
			Phone:    "+91-7841983995",
			LinkedIn: "https://linkedin.com/in/nitin-jangid-ba771726b",
			GitHub:   "https://github.com/OFFICIALNITIN",
		},
		Projects: []Project{
			{
				Title:       "MockMate - AI Interview Platform",
				Description: "A full-stack AI-driven mock interview platform enabling real-time one-to-one interview sessions using WebRTC. Features include a Profile Builder, skills assessment, and automated Gemini AI feedback for personalized improvement recommendations.",
				Tags:        []string{"MERN Stack", "WebRTC", "Gemini AI", "JWT", "Socket.io"},
				Link:        "https://mock-mate-topaz.vercel.app",
				GitHub:      "https://github.com/OFFICIALNITIN/MockMate",
			},
			{
				Title:       "Nutriguard Web App",
				Description: "Hackathon-winning (5th Rank) role-based platform for tracking child malnutrition. Integrated Mapbox for location tracking, automated reporting workflows, and an AI chatbot for user guidance.",
				Tags:        []string{"MERN Stack", "Mapbox", "AI Chatbot", "Analytics", "React"},
				Link:        "https://nutriguard.vercel.app",
				GitHub:      "https://github.com/etank0/nutriguard",
			},
			{
				Title:       "Discord Clone",
				Description: "A real-time chat application inspired by Discord. Features include voice/video channels, direct messaging, server management, and role-based permissions with a sleek modern UI.",
				Tags:        []string{"NestJS", "TypeScript", "Docker", "AWS S3", "Redis"},
				Link:        "https://discord-clone-yrns-1yo2cuyyc-officialnitins-projects.vercel.app/",
				GitHub:      "https://github.com/OFFICIALNITIN/discord-clone",
			},
		},
		Skills: []Skill{
			{Name: "JavaScript", Category: "frontend"},
			{Name: "React.js", Category: "frontend"},
			{Name: "Next.js", Category: "frontend"},
			{Name: "TypeScript", Category: "frontend"},
			{Name: "Tailwind CSS", Category: "frontend"},
			{Name: "HTML/CSS", Category: "frontend"},
			{Name: "Bootstrap", Category: "frontend"},
			{Name: "TanStack Query", Category: "frontend"},
			{Name: "Node.js", Category: "backend"},
			{Name: "Express.js", Category: "backend"},
			{Name: "NestJS", Category: "backend"},
			{Name: "C++", Category: "backend"},
			{Name: "Microservices", Category: "backend"},
			{Name: "RESTful APIs", Category: "backend"},
			{Name: "MongoDB", Category: "backend"},
			{Name: "PostgreSQL", Category: "backend"},
			{Name: "MySQL", Category: "backend"},
			{Name: "Docker", Category: "tools"},
			{Name: "AWS S3", Category: "tools"},
			{Name: "Git/GitHub", Category: "tools"},
			{Name: "Postman", Category: "tools"},
		},
		Experience: []Experience{
			{
				Role:    "Software Engineer Intern",
				Company: "Roxiler Systems",
				Period:  "June 2025 – Present",
				Description: []string{
					"Developing scalable applications using NestJS, Next.js, TypeScript, and Node.js within a microservices architecture.",
					"Building and optimizing backend services while translating business requirements into maintainable APIs.",
					"Integrated AWS S3 for secure file storage and containerized applications using Docker.",
					"Ensuring high code quality using modular architecture and reusable components.",
				},
			},
			{
				Role:    "Full Stack Web Developer Intern",
				Company: "Nullclass EdTech Pvt Ltd.",
				Period:  "June 2024 – July 2024",
				Description: []string{
					"Added new features to an existing web application, enhancing functionality and user experience.",
					"Utilized frontend and backend technologies, gaining a clear understanding of scalable feature development.",
					"Successfully completed assigned tasks on time, demonstrating strong problem-solving skills.",
				},
			},
			{
				Role:    "Web Developer Intern",
				Company: "EduNexa Tech Pvt Ltd.",
				Period:  "Dec 2023 – Jan 2024",
				Description: []string{
					"Utilized ReactJs and ExpressJs to develop interactive web applications.",
					"Resulted in a 20% increase in user engagement metrics.",
					"Acquired proficiency in debugging and troubleshooting code issues, reducing bug count by 30%.",
				},
			},
		},
		Sections: []Section{
			{ID: "about", Description: "Hero section with intro, identity card, and interactive terminal"},
			{ID: "desktop", Description: "Windows-style desktop with Skills, Experience, Projects, and Resume windows"},
			{ID: "contact", Description: "Contact section with email, phone, LinkedIn, and GitHub"},
		},
	}
}
